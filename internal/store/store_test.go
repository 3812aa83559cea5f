package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PowerPrice/internal/logx"
	"PowerPrice/internal/model"
)

func backends(t *testing.T) map[string]RateStore {
	t.Helper()
	dir := t.TempDir()

	sq, err := NewSQLiteStore(filepath.Join(dir, "rates.db"), logx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	mr := miniredis.RunT(t)
	rs, err := NewRedisStore(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { rs.Close() })

	return map[string]RateStore{
		"sqlite": sq,
		"redis":  rs,
		"file":   NewFileStore(filepath.Join(dir, "rates.json")),
	}
}

func TestRateStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fetched := time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.LoadRate(ctx, "EUR/NOK")
			require.NoError(t, err)
			assert.Nil(t, got, "empty store returns nil")

			want := model.ConversionRate{Rate: decimal.RequireFromString("11.4321"), FetchedAt: fetched}
			require.NoError(t, s.SaveRate(ctx, "EUR/NOK", want))

			got, err = s.LoadRate(ctx, "EUR/NOK")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, want.Rate.Equal(got.Rate), "rate %s", got.Rate)
			assert.True(t, want.FetchedAt.Equal(got.FetchedAt), "fetched_at %s", got.FetchedAt)

			// Overwrite keeps a single row per pair.
			newer := model.ConversionRate{Rate: decimal.RequireFromString("11.5"), FetchedAt: fetched.Add(time.Hour)}
			require.NoError(t, s.SaveRate(ctx, "EUR/NOK", newer))
			got, err = s.LoadRate(ctx, "EUR/NOK")
			require.NoError(t, err)
			assert.True(t, newer.Rate.Equal(got.Rate))

			other, err := s.LoadRate(ctx, "EUR/SEK")
			require.NoError(t, err)
			assert.Nil(t, other)
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).LoadRate(context.Background(), "EUR/NOK")
	assert.Error(t, err)
}

func TestNoopStore(t *testing.T) {
	s := NewNoopStore()
	require.NoError(t, s.SaveRate(context.Background(), "EUR/NOK", model.ConversionRate{Rate: decimal.NewFromInt(1)}))
	got, err := s.LoadRate(context.Background(), "EUR/NOK")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewRedisStore(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
