package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, LogsConfig{ServiceName: "lseed-ledger"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))

	_, ok := lp.Core(zapcore.InfoLevel).(*levelFilterCore)
	assert.False(t, ok, "disabled provider yields a nop core")
}

func TestLoggerProvider_BridgeDisabledReturnsBase(t *testing.T) {
	base := zaptest.NewLogger(t)
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, base)
	require.NoError(t, err)

	assert.Same(t, base, lp.Bridge(base))

	var nilProvider *LoggerProvider
	assert.False(t, nilProvider.IsEnabled())
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	log := zap.New(core).With(zap.String("unit_id", "u-1"))
	log.Info("import accepted")
	log.Warn("receipt lookup failed")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "receipt lookup failed", entry.Message)
	assert.Equal(t, "u-1", entry.ContextMap()["unit_id"])
}

type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func TestLoggerProvider_Bridge(t *testing.T) {
	exp := &memoryExporter{}
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp))),
		logger:   zap.NewNop(),
		config:   LogsConfig{Enabled: true, ServiceName: "lseed-ledger"},
	}
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	base, stdout := observer.New(zapcore.InfoLevel)
	log := lp.Bridge(zap.New(base))

	log.Debug("below threshold")
	log.Info("import accepted", zap.String("report_kind", "cash_in"))

	require.Equal(t, 1, stdout.Len())
	assert.Equal(t, []string{"import accepted"}, exp.bodies())
}
