package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"breakoutScanner/internal/domain"
	"breakoutScanner/internal/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newSignal(symbol string, createdAt time.Time) *domain.Signal {
	return &domain.Signal{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Interval: "15m",
		Plan: domain.TradePlan{
			EntryPrice:       100,
			StopLoss:         95,
			TakeProfit:       130,
			LiquidationPrice: 94.525,
			Leverage:         20,
			PositionSize:     0.2,
			RewardRiskRatio:  6,
		},
		LastPrice: 100.4,
		CreatedAt: createdAt,
		Notified:  true,
	}
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestRepository_SaveAndFindRecent(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := newSignal("BTCUSDT", base)
	second := newSignal("BTCUSDT", base.Add(15*time.Minute))
	second.Notified = false
	other := newSignal("ETHUSDT", base.Add(5*time.Minute))

	for _, sig := range []*domain.Signal{first, second, other} {
		id, err := repo.SaveSignal(ctx, sig)
		require.NoError(t, err)
		assert.Positive(t, id)
	}

	got, err := repo.FindRecent(ctx, "BTCUSDT", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, second.ID, got[0].ID)
	assert.False(t, got[0].Notified)
	assert.Equal(t, first.ID, got[1].ID)
	assert.True(t, got[1].Notified)

	assert.Equal(t, first.Plan, got[1].Plan)
	assert.Equal(t, "15m", got[1].Interval)
	assert.InDelta(t, 100.4, got[1].LastPrice, 1e-9)
	assert.True(t, first.CreatedAt.Equal(got[1].CreatedAt))
}

func TestRepository_FindRecentLimit(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.SaveSignal(ctx, newSignal("BTCUSDT", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	got, err := repo.FindRecent(ctx, "BTCUSDT", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = repo.FindRecent(ctx, "BTCUSDT", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.FindRecent(ctx, "SOLUSDT", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepository_SaveSignalErrors(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.SaveSignal(ctx, nil)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)

	sig := newSignal("BTCUSDT", time.Now())
	_, err = repo.SaveSignal(ctx, sig)
	require.NoError(t, err)

	// signal_id is unique.
	_, err = repo.SaveSignal(ctx, sig)
	assert.ErrorIs(t, err, ports.ErrQueryFailed)
}
