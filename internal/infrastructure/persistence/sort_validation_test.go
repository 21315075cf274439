package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":                 "DESC",
		"asc":              "ASC",
		"  ASC ":           "ASC",
		"desc":             "DESC",
		"ascending":        "DESC",
		"ASC; DELETE FROM": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty falls back", "", "created_at"},
		{"whitelisted column", "waybill_number", "waybill_number"},
		{"trimmed", "  destination ", "destination"},
		{"case sensitive", "Destination", "created_at"},
		{"unknown column", "receiver_telephone", "created_at"},
		{"expression", "total_amount, (SELECT 1)", "created_at"},
		{"quoted payload", "status'--", "created_at"},
		{"stacked statement", "status; DROP TABLE parcels", "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.input, ParcelSortFields, "created_at"))
		})
	}
}

func TestSortFieldWhitelistsHoldColumnNames(t *testing.T) {
	for name, fields := range map[string]map[string]bool{
		"users":             UserSortFields,
		"branches":          BranchSortFields,
		"parcels":           ParcelSortFields,
		"dispatches":        DispatchSortFields,
		"contract_customer": ContractCustomerSortFields,
		"invoices":          InvoiceSortFields,
		"branch_deposits":   BranchDepositSortFields,
		"parcel_deposits":   ParcelDepositSortFields,
		"cod_collections":   CODCollectionSortFields,
		"cheque_deposits":   ChequeDepositSortFields,
		"daily_expenses":    DailyExpenseSortFields,
	} {
		assert.NotEmpty(t, fields, name)
		for field := range fields {
			assert.Regexp(t, `^[a-z_]+$`, field, name)
		}
	}
}

func TestPaginate(t *testing.T) {
	db := newSQLiteDB(t)

	render := func(filter shared.Filter) *gorm.Statement {
		var rows []map[string]any
		q := db.Session(&gorm.Session{DryRun: true}).Table("branch_deposits")
		return paginate(q, filter, BranchDepositSortFields, "branch ASC, date ASC").Find(&rows).Statement
	}

	t.Run("default order keeps every column", func(t *testing.T) {
		stmt := render(shared.Filter{})
		assert.Contains(t, stmt.SQL.String(), "ORDER BY branch ASC, date ASC LIMIT 20")
	})

	t.Run("requested column replaces the default", func(t *testing.T) {
		stmt := render(shared.Filter{OrderBy: "running_debt", OrderDir: "asc"})
		assert.Contains(t, stmt.SQL.String(), "ORDER BY running_debt ASC")
		assert.NotContains(t, stmt.SQL.String(), "branch ASC")
	})

	t.Run("rejected column keeps the default", func(t *testing.T) {
		stmt := render(shared.Filter{OrderBy: "created_by"})
		assert.Contains(t, stmt.SQL.String(), "ORDER BY branch ASC, date ASC")
	})

	t.Run("page window is capped", func(t *testing.T) {
		stmt := render(shared.Filter{Page: 3, PageSize: 500})
		assert.Contains(t, stmt.SQL.String(), "LIMIT 100 OFFSET 200")
	})
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%kisumu%", likePattern("  Kisumu "))
	assert.Equal(t, "%%", likePattern(""))
}
