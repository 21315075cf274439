package identity

import (
	"strings"
	"time"

	"github.com/wms/backend/internal/domain/shared"
)

// Branch is a physical office where parcels are received and dispatched
type Branch struct {
	shared.BaseAggregateRoot
	Name    string
	Address string
	Phone   string
	Email   string
}

// NewBranch creates a branch
func NewBranch(name, address, phone, email string) (*Branch, error) {
	b := &Branch{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := b.Update(name, address, phone, email); err != nil {
		return nil, err
	}
	b.Version = 1
	return b, nil
}

// Update replaces the branch details
func (b *Branch) Update(name, address, phone, email string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.Invalid("Branch name is required")
	}
	if len(name) > 100 {
		return shared.Invalid("Branch name cannot exceed 100 characters")
	}
	if email = strings.TrimSpace(email); email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	b.Name = name
	b.Address = strings.TrimSpace(address)
	b.Phone = strings.TrimSpace(phone)
	b.Email = strings.ToLower(email)
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Code is the short upper-case prefix used in waybill numbers
func (b *Branch) Code() string {
	return BranchCode(b.Name)
}

// BranchCode derives a three-letter code from a branch name
func BranchCode(name string) string {
	var letters []rune
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
		if len(letters) == 3 {
			break
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}
