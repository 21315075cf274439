package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls database instrumentation.
type DBConfig struct {
	Tracing            bool
	DBSystem           string
	LogFullSQL         bool // include bound variables in spans, development only
	SlowQueryThreshold time.Duration
	PoolStatsInterval  time.Duration
}

// DefaultDBConfig returns default configuration for database instrumentation.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		DBSystem:           "postgresql",
		SlowQueryThreshold: 200 * time.Millisecond,
		PoolStatsInterval:  15 * time.Second,
	}
}

// DBMetrics records query counts and latency and the connection pool state.
type DBMetrics struct {
	queryTotal         *Counter
	queryDuration      *Histogram
	slowQueryTotal     *Counter
	poolConnections    *Gauge
	poolConnectionsMax *Gauge

	config DBConfig
	logger *zap.Logger
	sqlDB  *sql.DB

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type dbStartKey struct{}

// InstrumentDB registers otelgorm (when tracing is on) and query metrics
// callbacks on db. Call StartPoolStats to begin sampling the pool.
func InstrumentDB(db *gorm.DB, meter metric.Meter, cfg DBConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultDBConfig()
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = defaults.SlowQueryThreshold
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = defaults.PoolStatsInterval
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = defaults.DBSystem
	}

	m, err := newDBMetrics(meter, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, err
		}
	}
	if err := m.registerCallbacks(db); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		m.sqlDB = sqlDB
	}
	return m, nil
}

func newDBMetrics(meter metric.Meter, cfg DBConfig, logger *zap.Logger) (*DBMetrics, error) {
	queryTotal, err := NewCounter(meter, "db_query_total", "Total number of database queries by operation type", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueryTotal, err := NewCounter(meter, "db_slow_query_total", "Total number of slow database queries", "{query}")
	if err != nil {
		return nil, err
	}
	poolConnections, err := NewGauge(meter, "db_pool_connections", "Number of connections in the pool by state", "{connection}")
	if err != nil {
		return nil, err
	}
	poolConnectionsMax, err := NewGauge(meter, "db_pool_connections_max", "Maximum number of connections in the pool", "{connection}")
	if err != nil {
		return nil, err
	}

	return &DBMetrics{
		queryTotal:         queryTotal,
		queryDuration:      queryDuration,
		slowQueryTotal:     slowQueryTotal,
		poolConnections:    poolConnections,
		poolConnectionsMax: poolConnectionsMax,
		config:             cfg,
		logger:             logger,
		stopCh:             make(chan struct{}),
	}, nil
}

func (m *DBMetrics) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	steps := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("wms_metrics:before_create", m.before) },
		func() error {
			return cb.Create().After("gorm:create").Register("wms_metrics:after_create", m.after("INSERT"))
		},
		func() error { return cb.Query().Before("gorm:query").Register("wms_metrics:before_query", m.before) },
		func() error {
			return cb.Query().After("gorm:query").Register("wms_metrics:after_query", m.after("SELECT"))
		},
		func() error { return cb.Update().Before("gorm:update").Register("wms_metrics:before_update", m.before) },
		func() error {
			return cb.Update().After("gorm:update").Register("wms_metrics:after_update", m.after("UPDATE"))
		},
		func() error { return cb.Delete().Before("gorm:delete").Register("wms_metrics:before_delete", m.before) },
		func() error {
			return cb.Delete().After("gorm:delete").Register("wms_metrics:after_delete", m.after("DELETE"))
		},
		func() error { return cb.Row().Before("gorm:row").Register("wms_metrics:before_row", m.before) },
		func() error { return cb.Row().After("gorm:row").Register("wms_metrics:after_row", m.after("")) },
		func() error { return cb.Raw().Before("gorm:raw").Register("wms_metrics:before_raw", m.before) },
		func() error { return cb.Raw().After("gorm:raw").Register("wms_metrics:after_raw", m.after("")) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (m *DBMetrics) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, dbStartKey{}, time.Now())
	}
}

// after records the query; an empty operation is taken from the SQL verb.
func (m *DBMetrics) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(dbStartKey{}).(time.Time)
		if !ok {
			return
		}
		op := operation
		if op == "" {
			op = sqlOperation(db.Statement.SQL.String())
		}
		elapsed := time.Since(start)
		m.RecordQuery(ctx, op, db.Statement.Table, elapsed)

		span := trace.SpanFromContext(ctx)
		if span.IsRecording() && elapsed > m.config.SlowQueryThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

// RecordQuery records one query's count and latency and flags it when slow.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
		m.logger.Warn("Slow query",
			zap.String("operation", operation),
			zap.String("table", table),
			zap.Duration("duration", duration),
		)
	}
}

func sqlOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return ""
	}
	switch verb := strings.ToUpper(fields[0]); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return verb
	case "WITH":
		return "SELECT"
	default:
		return "OTHER"
	}
}

// StartPoolStats samples the connection pool every PoolStatsInterval until
// Stop or ctx is done.
func (m *DBMetrics) StartPoolStats(ctx context.Context) {
	if m.sqlDB == nil {
		m.logger.Warn("Cannot start pool stats collection: no sql.DB")
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()

		m.collectPoolStats(ctx)
		for {
			select {
			case <-ticker.C:
				m.collectPoolStats(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool sampling. Safe to call more than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}
