package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Slug string `gorm:"size:255"`
}

func newTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

// installTestTracer swaps the global tracer provider for one backed by an
// in-memory exporter, restoring the previous provider on cleanup.
func installTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return exporter
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "query variables stay out of spans by default")
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_DisabledRegistersNothing(t *testing.T) {
	db := newTracedDB(t)

	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	_, ok := db.Config.Plugins["otelgorm"]
	assert.False(t, ok)
}

func TestDBTracingPlugin_EnabledInstallsOtelGorm(t *testing.T) {
	db := newTracedDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	_, ok := db.Config.Plugins["otelgorm"]
	assert.True(t, ok)

	// queries still work with the callbacks installed
	require.NoError(t, db.Create(&tracedRow{Slug: "ssd-samsung-870"}).Error)
	var row tracedRow
	require.NoError(t, db.First(&row, "slug = ?", "ssd-samsung-870").Error)
	assert.Equal(t, "ssd-samsung-870", row.Slug)
}

func TestDBTracingPlugin_QueryExportsSpans(t *testing.T) {
	exporter := installTestTracer(t)
	db := newTracedDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "sync.products")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Slug: "tv-55-x90"}).Error)
	span.End()

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans, "otelgorm should export a span per query")

	var parentSeen bool
	for _, s := range spans {
		if s.Name == "sync.products" {
			parentSeen = true
		}
	}
	assert.True(t, parentSeen)
}

func TestDBTracingPlugin_FinishQueryAnnotatesSpan(t *testing.T) {
	exporter := installTestTracer(t)

	cfg := DefaultDBTracingConfig()
	cfg.SlowQueryThresh = 0 // every query counts as slow
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	ctx, span := otel.Tracer("test").Start(context.Background(), "db.create")
	ctx = WithQueryStartTime(ctx)

	plugin.finishQuery(&gorm.DB{
		Config: &gorm.Config{},
		Statement: &gorm.Statement{
			DB:      &gorm.DB{RowsAffected: 1},
			Context: ctx,
			Table:   "products",
		},
	})
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := make(map[string]interface{})
	for _, attr := range spans[0].Attributes {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "products", attrs["db.sql.table"])
	assert.Equal(t, int64(1), attrs["db.rows_affected"])
	assert.Equal(t, true, attrs["db.slow_query"])

	var slowEvent bool
	for _, event := range spans[0].Events {
		if event.Name == "slow_query" {
			slowEvent = true
		}
	}
	assert.True(t, slowEvent)
}

func TestDBTracingPlugin_FinishQueryIgnoresNonRecordingSpan(t *testing.T) {
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	// a context without a recording span must be a no-op
	plugin.finishQuery(&gorm.DB{
		Config: &gorm.Config{},
		Statement: &gorm.Statement{
			Context: trace.ContextWithSpan(context.Background(), nil),
		},
	})
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)
}
