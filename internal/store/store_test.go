package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dcaportfolio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func deal(id int64, botID int64, closed bool, profit float64, hours float64) models.Deal {
	d := models.Deal{
		APIDeal: models.APIDeal{
			ID:           id,
			BotID:        botID,
			BotName:      "bot",
			Pair:         "BTC",
			Status:       "bought",
			CreatedAt:    baseTime.Add(-time.Duration(hours) * time.Hour),
			UpdatedAt:    baseTime.Add(time.Duration(id) * time.Minute),
			BoughtVolume: 100,
		},
		ProfileID: "main",
		DealHours: hours,
	}
	if closed {
		d.Status = "completed"
		d.ClosedAt = ptr(baseTime)
		d.RealizedActualProfitUSD = ptr(profit)
	} else {
		d.MaxDealFunds = ptr(250.0)
	}
	return d
}

func TestNewStoreRecordsMigrations(t *testing.T) {
	s := newTestStore(t)

	var applied []migrationRow
	require.NoError(t, s.db.Order("version").Find(&applied).Error)
	require.Len(t, applied, len(migrations))
	assert.Equal(t, "reset_synced_bots", applied[0].Name)
	assert.Equal(t, "drop_failed_cancelled_deals", applied[1].Name)

	// Reapplying is a no-op.
	require.NoError(t, migrate(s.db))
	var count int64
	require.NoError(t, s.db.Model(&migrationRow{}).Count(&count).Error)
	assert.Equal(t, int64(len(migrations)), count)
}

func TestUpsertReplacesRowsByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, models.TableDeals, []models.Deal{deal(1, 1, false, 0, 1), deal(2, 1, false, 0, 1)}))

	updated := deal(1, 1, true, 12.5, 3)
	updated.UpdatedAt = baseTime.Add(-24 * time.Hour)
	require.NoError(t, s.Upsert(ctx, models.TableDeals, []models.Deal{updated}))

	deals, err := s.Deals(ctx, "main", DealStatusAll)
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, int64(2), deals[0].ID)

	got := deals[1]
	assert.Equal(t, int64(1), got.ID)
	assert.False(t, got.IsOpen())
	assert.True(t, got.UpdatedAt.Equal(updated.UpdatedAt))
	require.NotNil(t, got.RealizedActualProfitUSD)
	assert.InDelta(t, 12.5, *got.RealizedActualProfitUSD, 1e-9)
}

func TestUpsertEdgeCases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.Upsert(ctx, models.TableBots, []models.Bot{}))
	assert.Error(t, s.Upsert(ctx, "orders", []models.Bot{{ID: 1}}))

	bots := make([]models.Bot, 120)
	for i := range bots {
		bots[i] = models.Bot{ID: int64(i + 1), ProfileID: "main", Origin: "sync", UpdatedAt: baseTime}
	}
	require.NoError(t, s.Upsert(ctx, models.TableBots, bots))
	got, err := s.Bots(ctx, "main")
	require.NoError(t, err)
	assert.Len(t, got, 120)
}

func TestDealsStatusFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, models.TableDeals, []models.Deal{
		deal(1, 1, false, 0, 1),
		deal(2, 1, true, 5, 2),
		deal(3, 2, true, 7, 4),
	}))

	open, err := s.Deals(ctx, "main", DealStatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, int64(1), open[0].ID)

	closed, err := s.Deals(ctx, "main", DealStatusClosed)
	require.NoError(t, err)
	assert.Len(t, closed, 2)

	other, err := s.Deals(ctx, "other", DealStatusAll)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestParseDealStatus(t *testing.T) {
	for in, want := range map[string]DealStatus{"": DealStatusAll, "all": DealStatusAll, "open": DealStatusOpen, "closed": DealStatusClosed} {
		got, err := ParseDealStatus(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDealStatus("pending")
	assert.Error(t, err)
}

func TestSyncCursorIsMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.LastSyncTime(ctx, "main")
	require.NoError(t, err)
	assert.Zero(t, got)

	require.NoError(t, s.SetLastSyncTime(ctx, "main", 2000))
	require.NoError(t, s.SetLastSyncTime(ctx, "main", 1000))
	got, err = s.LastSyncTime(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got)

	require.NoError(t, s.SetLastSyncTime(ctx, "main", 3000))
	got, err = s.LastSyncTime(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got)
}

func TestDeleteProfileData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, models.TableDeals, []models.Deal{deal(1, 1, false, 0, 1)}))
	require.NoError(t, s.Upsert(ctx, models.TableBots, []models.Bot{{ID: 1, ProfileID: "main"}, {ID: 2, ProfileID: "other"}}))
	require.NoError(t, s.Upsert(ctx, models.TableAccounts, []models.AccountRow{{ID: "1-btc", ProfileID: "main", AccountID: 1}}))
	require.NoError(t, s.SetLastSyncTime(ctx, "main", 1000))

	require.NoError(t, s.DeleteProfileData(ctx, "main"))

	deals, err := s.Deals(ctx, "main", DealStatusAll)
	require.NoError(t, err)
	assert.Empty(t, deals)
	rows, err := s.AccountRows(ctx, "main")
	require.NoError(t, err)
	assert.Empty(t, rows)
	cursor, err := s.LastSyncTime(ctx, "main")
	require.NoError(t, err)
	assert.Zero(t, cursor)

	others, err := s.Bots(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestMetrics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, models.TableDeals, []models.Deal{
		deal(1, 1, false, 0, 1),
		deal(2, 1, true, 0.1, 2),
		deal(3, 2, true, 0.2, 3),
	}))
	require.NoError(t, s.Upsert(ctx, models.TableBots, []models.Bot{
		{ID: 1, ProfileID: "main", IsEnabled: true, MaxFunds: 600, EnabledInactiveFunds: 450},
		{ID: 2, ProfileID: "main", IsEnabled: false, MaxFunds: 300},
	}))
	require.NoError(t, s.Upsert(ctx, models.TableAccounts, []models.AccountRow{
		{ID: "1-btc", ProfileID: "main", AccountID: 1, Position: 0.5, USDValue: 30000, OnOrders: 0.1},
		{ID: "1-usdt", ProfileID: "main", AccountID: 1, Position: 20000, USDValue: 20000, OnOrders: 500},
		{ID: "1-dust", ProfileID: "main", AccountID: 1, OnOrders: 3},
	}))

	m, err := s.Metrics(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 1, m.ActiveDeals)
	assert.Equal(t, 2, m.ClosedDeals)
	assert.Equal(t, 0.3, m.TotalProfitUSD)
	assert.Equal(t, 2.5, m.AverageDealHours)
	assert.Equal(t, 100.0, m.TotalInDeals)
	assert.Equal(t, 250.0, m.MaxRisk)
	assert.Equal(t, 50000.0, m.Bankroll)
	assert.Equal(t, 6500.0, m.OnOrdersUSD)
	assert.Equal(t, 1, m.EnabledBots)
	assert.Equal(t, 600.0, m.MaxBotFunds)
	assert.Equal(t, 450.0, m.InactiveFunds)
}

func TestBotPerformance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, models.TableDeals, []models.Deal{
		deal(1, 1, true, 5, 2),
		deal(2, 1, true, 5, 4),
		deal(3, 2, true, 20, 1),
		deal(4, 3, false, 0, 1),
	}))

	perf, err := s.BotPerformance(ctx, "main")
	require.NoError(t, err)
	require.Len(t, perf, 2)
	assert.Equal(t, int64(2), perf[0].BotID)
	assert.Equal(t, 20.0, perf[0].TotalProfitUSD)
	assert.Equal(t, int64(1), perf[1].BotID)
	assert.Equal(t, 2, perf[1].ClosedDeals)
	assert.Equal(t, 3.0, perf[1].AverageDealHours)
}
