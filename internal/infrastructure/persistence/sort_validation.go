package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// paginate applies the whitelisted ordering and the page window. An empty
// OrderBy keeps defaultOrder, which may name several columns.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	filter = filter.Normalize()
	if field := ValidateSortField(filter.OrderBy, allowed, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(defaultOrder)
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// likePattern builds a case-insensitive LIKE argument; callers compare
// against LOWER(column) so the query runs on postgres and sqlite alike.
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"first_name":    true,
	"last_name":     true,
	"role":          true,
	"last_login_at": true,
}

// BranchSortFields contains allowed sort fields for branches
var BranchSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
}

// ParcelSortFields contains allowed sort fields for parcels
var ParcelSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"waybill_number": true,
	"destination":    true,
	"sender":         true,
	"receiver":       true,
	"status":         true,
	"total_amount":   true,
	"amount_paid":    true,
}

// DispatchSortFields contains allowed sort fields for dispatches
var DispatchSortFields = map[string]bool{
	"created_at":     true,
	"dispatch_time":  true,
	"dispatch_code":  true,
	"destination":    true,
	"source_branch":  true,
	"vehicle_number": true,
	"status":         true,
}

// ContractCustomerSortFields contains allowed sort fields for contract customers
var ContractCustomerSortFields = map[string]bool{
	"created_at":      true,
	"name":            true,
	"company_name":    true,
	"contract_number": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"created_at":     true,
	"invoice_number": true,
	"issue_date":     true,
	"due_date":       true,
	"status":         true,
	"total_amount":   true,
	"paid_amount":    true,
}

// BranchDepositSortFields contains allowed sort fields for branch deposits
var BranchDepositSortFields = map[string]bool{
	"date":           true,
	"branch":         true,
	"cod_total":      true,
	"deposit_amount": true,
	"running_debt":   true,
}

// ParcelDepositSortFields contains allowed sort fields for parcel deposits
var ParcelDepositSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"deposited_amount": true,
	"expenses":         true,
}

// CODCollectionSortFields contains allowed sort fields for COD collections
var CODCollectionSortFields = map[string]bool{
	"created_at":       true,
	"collection_date":  true,
	"total_cod_amount": true,
	"shortfall":        true,
	"status":           true,
}

// ChequeDepositSortFields contains allowed sort fields for cheque deposits
var ChequeDepositSortFields = map[string]bool{
	"created_at":    true,
	"deposit_date":  true,
	"amount":        true,
	"status":        true,
	"cheque_number": true,
}

// DailyExpenseSortFields contains allowed sort fields for daily expenses
var DailyExpenseSortFields = map[string]bool{
	"created_at": true,
	"date":       true,
	"amount":     true,
	"category":   true,
	"status":     true,
}
