package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username     string        `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email        string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	FirstName    string        `gorm:"type:varchar(100)"`
	LastName     string        `gorm:"type:varchar(100)"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'clerk'"`
	BranchID     *uuid.UUID    `gorm:"type:uuid;index"`
	IsActive     bool          `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		BranchID:          m.BranchID,
		IsActive:          m.IsActive,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.BranchID = u.BranchID
	m.IsActive = u.IsActive
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// BranchModel is the persistence model for the Branch domain entity.
type BranchModel struct {
	AggregateModel
	Name    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Address string `gorm:"type:varchar(500)"`
	Phone   string `gorm:"type:varchar(50)"`
	Email   string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the persistence model to a domain Branch entity.
func (m *BranchModel) ToDomain() *identity.Branch {
	return &identity.Branch{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Address:           m.Address,
		Phone:             m.Phone,
		Email:             m.Email,
	}
}

// FromDomain populates the persistence model from a domain Branch entity.
func (m *BranchModel) FromDomain(b *identity.Branch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.Address = b.Address
	m.Phone = b.Phone
	m.Email = b.Email
}

// BranchModelFromDomain creates a new persistence model from a domain Branch entity.
func BranchModelFromDomain(b *identity.Branch) *BranchModel {
	m := &BranchModel{}
	m.FromDomain(b)
	return m
}
