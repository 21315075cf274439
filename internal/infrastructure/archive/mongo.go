// Package archive keeps copies of generated daily reports outside the main database.
package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms/backend/internal/domain/report"
)

const reportsCollection = "daily_reports"

// reportDocument is the stored shape of a daily report; money is kept as
// strings so no precision is lost in BSON doubles.
type reportDocument struct {
	Day                   string    `bson:"day"`
	Date                  time.Time `bson:"date"`
	ParcelsRegistered     int64     `bson:"parcels_registered"`
	ParcelSales           string    `bson:"parcel_sales"`
	ParcelPaid            string    `bson:"parcel_paid"`
	Dispatches            int64     `bson:"dispatches"`
	CODCollected          string    `bson:"cod_collected"`
	DepositsBanked        string    `bson:"deposits_banked"`
	ApprovedExpenses      string    `bson:"approved_expenses"`
	OutstandingBranchDebt string    `bson:"outstanding_branch_debt"`
	NetCash               string    `bson:"net_cash"`
	GeneratedAt           time.Time `bson:"generated_at"`
}

func toDocument(r report.DailyReport) reportDocument {
	return reportDocument{
		Day:                   r.Date.UTC().Format(time.DateOnly),
		Date:                  r.Date.UTC(),
		ParcelsRegistered:     r.ParcelsRegistered,
		ParcelSales:           r.ParcelSales.StringFixed(2),
		ParcelPaid:            r.ParcelPaid.StringFixed(2),
		Dispatches:            r.Dispatches,
		CODCollected:          r.CODCollected.StringFixed(2),
		DepositsBanked:        r.DepositsBanked.StringFixed(2),
		ApprovedExpenses:      r.ApprovedExpenses.StringFixed(2),
		OutstandingBranchDebt: r.OutstandingBranchDebt.StringFixed(2),
		NetCash:               r.NetCash().StringFixed(2),
		GeneratedAt:           r.GeneratedAt.UTC(),
	}
}

// MongoArchive upserts one document per report day
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoArchive connects to MongoDB and verifies the connection
func NewMongoArchive(ctx context.Context, uri, database string) (*MongoArchive, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &MongoArchive{
		client:     client,
		collection: client.Database(database).Collection(reportsCollection),
	}, nil
}

func newMongoArchiveWithCollection(coll *mongo.Collection) *MongoArchive {
	return &MongoArchive{collection: coll}
}

// Save replaces the stored report for the same day, inserting it the first time
func (a *MongoArchive) Save(ctx context.Context, r report.DailyReport) error {
	doc := toDocument(r)
	_, err := a.collection.ReplaceOne(ctx,
		bson.M{"day": doc.Day},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("archive report %s to MongoDB: %w", doc.Day, err)
	}
	return nil
}

// Close disconnects the client
func (a *MongoArchive) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

var _ report.Archive = (*MongoArchive)(nil)
