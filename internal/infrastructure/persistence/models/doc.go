// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free of ORM
// concerns.
//
// Structure:
//   - base.go: shared columns (BaseModel, AggregateModel, AuditModel) and column types
//   - identity.go: users, branches
//   - shipping.go: parcels, dispatches
//   - billing.go: contract customers, invoices, invoice items
//   - finance.go: branch deposits, parcel deposits, COD collections, cheques, expenses
//
// The tables themselves are created by the SQL files in migrations/. AllModels exists
// for sqlite-backed tests, which build the schema with AutoMigrate.
package models
