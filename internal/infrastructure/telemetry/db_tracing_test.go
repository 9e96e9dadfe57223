package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedGuard struct {
	ID   uint   `gorm:"primaryKey"`
	Kind string `gorm:"size:16;uniqueIndex"`
}

func newTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedGuard{}))
	return db
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)

	def := DefaultDBTracingConfig()
	assert.False(t, def.Enabled)
	assert.False(t, def.LogFullSQL)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := newTracedDB(t)
	require.NoError(t, NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop()).Register(db))
	assert.Nil(t, db.Callback().Query().Get("ledger_timing:after_query"))
}

func TestDBTracingPlugin_RecordsSpans(t *testing.T) {
	sr := useSpanRecorder(t)
	db := newTracedDB(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	ctx, parent := StartSpan(context.Background(), "ingestion.cash_in")
	require.NoError(t, db.WithContext(ctx).Create(&tracedGuard{Kind: "cash_in"}).Error)

	err := db.WithContext(ctx).Create(&tracedGuard{Kind: "cash_in"}).Error
	require.Error(t, err, "unique violation")

	var found tracedGuard
	require.NoError(t, db.WithContext(ctx).First(&found, "kind = ?", "cash_in").Error)
	parent.End()

	spans := sr.Ended()
	require.Greater(t, len(spans), 3, "one span per statement plus the parent")

	var failed []string
	var tabled int
	for _, s := range spans {
		if s.Status().Code == codes.Error {
			failed = append(failed, s.Name())
		}
		for _, a := range s.Attributes() {
			if a.Key == "db.rows_affected" {
				tabled++
				assert.NotEqual(t, "ingestion.cash_in", s.Name(), "db attributes belong on the statement span")
			}
		}
	}
	assert.Equal(t, []string{"gorm.Create"}, failed, "only the failing statement span is marked")
	assert.Positive(t, tabled)
}

func TestDBTracingPlugin_MarksSlowQueries(t *testing.T) {
	sr := useSpanRecorder(t)
	db := newTracedDB(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	var count int64
	require.NoError(t, db.WithContext(context.Background()).Model(&tracedGuard{}).Count(&count).Error)

	var slowOn []string
	for _, s := range sr.Ended() {
		for _, e := range s.Events() {
			if e.Name == "slow_query_warning" {
				slowOn = append(slowOn, s.Name())
			}
		}
	}
	assert.Equal(t, []string{"gorm.Query"}, slowOn)
}

func TestDBTracingPlugin_DoubleRegistration(t *testing.T) {
	db := newTracedDB(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.Error(t, plugin.Register(db))
}
