package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenum "rxledger/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT: every call bumps
// the stored value by the increment argument (1 for strict calls).
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	m.calls++

	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := corenum.DefaultConfig("PINV")
	period := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PINV-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PINV-2026-00002", num)

	assert.Equal(t, 2, q.calls, "strict strategy should hit DB on every call")
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := corenum.DefaultConfig("PO")
	period := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	opts := &corenum.Options{
		Strategy:  corenum.StrategyCached,
		RangeSize: 10,
	}

	// First call allocates the range 1..10 and returns 1.
	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00001", num)
	assert.Equal(t, int64(10), q.currentValue)

	// Second call is served from memory.
	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00002", num)
	assert.Equal(t, int64(10), q.currentValue)

	// Exhaust the range.
	for i := 0; i < 8; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}

	// Next call triggers a refill: range 11..20, returns 11.
	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00011", num)
	assert.Equal(t, int64(20), q.currentValue)
	assert.Equal(t, 2, q.calls, "cached strategy should hit DB once per range")
}

func TestGetNextNumber_ResetPeriods(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	period := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "PINV_2026", svc.buildKey("", corenum.DefaultConfig("PINV"), period))

	cfg := corenum.DefaultConfig("PINV")
	cfg.ResetPeriod = "month"
	assert.Equal(t, "PINV_2026_04", svc.buildKey("", cfg, period))

	cfg.ResetPeriod = "never"
	assert.Equal(t, "PINV", svc.buildKey("", cfg, period))

	assert.Equal(t, "h1:PINV", svc.buildKey("h1", cfg, period))
}

func TestFormatNumber(t *testing.T) {
	svc := New(&mockQuerier{})
	period := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	cfg := corenum.DefaultConfig("PAY")
	assert.Equal(t, "PAY-2026-00042", svc.formatNumber(cfg, period, 42))

	cfg.IncludeYear = false
	cfg.PadWidth = 3
	assert.Equal(t, "PAY-042", svc.formatNumber(cfg, period, 42))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("PINV-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("PAY-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
	assert.Equal(t, int64(-1), ParseNumber("PINV-"))
	assert.Equal(t, int64(-1), ParseNumber("PINV-2026-ABC"))
}
