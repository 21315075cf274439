package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// DefaultPaymentTerms applies when a customer is created without terms
const DefaultPaymentTerms = "Net 30"

var (
	contractSeqPattern = regexp.MustCompile(`CTR(\d+)$`)
	maxTaxRate         = decimal.NewFromInt(100)
)

// CustomerDetails is the editable part of a contract customer
type CustomerDetails struct {
	Name          string
	CompanyName   string
	Email         string
	Phone         string
	Address       string
	ContactPerson string
	PaymentTerms  string
	TaxRate       decimal.Decimal
}

// ContractCustomer is a business billed monthly instead of paying per parcel
type ContractCustomer struct {
	shared.BaseAggregateRoot
	shared.Audited
	Name           string
	CompanyName    string
	Email          string
	Phone          string
	Address        string
	ContactPerson  string
	ContractNumber string
	PaymentTerms   string
	TaxRate        decimal.Decimal
	IsActive       bool
}

// NewContractCustomer creates an active customer under the given contract number
func NewContractCustomer(contractNumber string, details CustomerDetails, createdBy uuid.UUID) (*ContractCustomer, error) {
	if strings.TrimSpace(contractNumber) == "" {
		return nil, shared.Invalid("Contract number is required")
	}
	c := &ContractCustomer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractNumber:    contractNumber,
		IsActive:          true,
	}
	c.SetCreatedBy(createdBy)
	if err := c.apply(details); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the customer's details
func (c *ContractCustomer) Update(details CustomerDetails, updatedBy uuid.UUID) error {
	if err := c.apply(details); err != nil {
		return err
	}
	c.SetUpdatedBy(updatedBy)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *ContractCustomer) apply(d CustomerDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.Invalid("Customer name is required")
	}
	if len(name) > 200 {
		return shared.Invalid("Customer name cannot exceed 200 characters")
	}
	if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(maxTaxRate) {
		return shared.Invalid("Tax rate must be between 0 and 100")
	}
	terms := strings.TrimSpace(d.PaymentTerms)
	if terms == "" {
		terms = DefaultPaymentTerms
	}
	c.Name = name
	c.CompanyName = strings.TrimSpace(d.CompanyName)
	c.Email = strings.ToLower(strings.TrimSpace(d.Email))
	c.Phone = strings.TrimSpace(d.Phone)
	c.Address = strings.TrimSpace(d.Address)
	c.ContactPerson = strings.TrimSpace(d.ContactPerson)
	c.PaymentTerms = terms
	c.TaxRate = d.TaxRate.Round(2)
	return nil
}

// Deactivate hides the customer from default listings
func (c *ContractCustomer) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now().UTC()
}

// ContractNumberPrefix returns the prefix shared by one year's contract numbers
func ContractNumberPrefix(year int) string {
	return fmt.Sprintf("FHL-%d-CTR", year)
}

// FormatContractNumber builds FHL-{YYYY}-CTR{seq:03d}
func FormatContractNumber(year, seq int) string {
	return fmt.Sprintf("%s%03d", ContractNumberPrefix(year), seq)
}

// NextContractSequence returns one more than the highest suffix among existing numbers
func NextContractSequence(existing []string) int {
	highest := 0
	for _, number := range existing {
		m := contractSeqPattern.FindStringSubmatch(number)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}
