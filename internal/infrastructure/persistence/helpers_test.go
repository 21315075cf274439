package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shipping"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// newMockDB opens GORM on a postgres dialector backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// newSQLiteDB opens an in-memory sqlite database with the full schema.
// A single connection keeps the memory database alive for the whole test.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig(gormlogger.Discard))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func seedUser(t *testing.T, db *gorm.DB, username, first, last string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, username+"@example.com", "Password123!", identity.RoleClerk)
	require.NoError(t, err)
	u.FirstName = first
	u.LastName = last
	require.NoError(t, NewGormUserRepository(db).Save(context.Background(), u))
	return u
}

func seedParcel(t *testing.T, db *gorm.DB, waybill string, clerk uuid.UUID, createdAt time.Time, total string, payment string) *shipping.Parcel {
	t.Helper()
	p, err := shipping.NewParcel(waybill, shipping.ParcelDetails{
		Sender:            "Alice",
		SenderTelephone:   "0700000001",
		Receiver:          "Bob",
		ReceiverTelephone: "0700000002",
		Destination:       "Nairobi",
		TotalAmount:       decPtr(total),
		PaymentMethods:    payment,
	}, clerk)
	require.NoError(t, err)
	p.CreatedAt = createdAt
	p.UpdatedAt = createdAt
	require.NoError(t, NewGormParcelRepository(db).Save(context.Background(), p))
	return p
}
