package engine

import (
	"context"
	"time"

	"dcaportfolio/internal/config"
	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/logger"
	"dcaportfolio/internal/models"

	"github.com/stretchr/testify/mock"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClient struct {
	active    []models.APIDeal
	pages     [][]models.APIDeal
	pageErr   map[int]error
	dealCalls []exchange.DealQuery

	bots     [][]models.APIBot
	botCalls []exchange.BotQuery

	orders    map[int64][]models.MarketOrder
	ordersErr error

	accounts []models.APIAccount
	tables   map[int64][]models.AccountTableRow
	loaded   []int64
}

var _ exchange.Client = (*fakeClient)(nil)

func (f *fakeClient) ListDeals(_ context.Context, q exchange.DealQuery) (exchange.Page[models.APIDeal], error) {
	f.dealCalls = append(f.dealCalls, q)
	if q.Scope == "active" {
		return exchange.Page[models.APIDeal]{Items: f.active, Received: len(f.active)}, nil
	}
	idx := q.Offset / q.Limit
	if err, ok := f.pageErr[idx]; ok {
		return exchange.Page[models.APIDeal]{}, err
	}
	if idx >= len(f.pages) {
		return exchange.Page[models.APIDeal]{}, nil
	}
	return exchange.Page[models.APIDeal]{Items: f.pages[idx], Received: len(f.pages[idx])}, nil
}

func (f *fakeClient) ListBots(_ context.Context, q exchange.BotQuery) (exchange.Page[models.APIBot], error) {
	f.botCalls = append(f.botCalls, q)
	idx := q.Offset / q.Limit
	if idx >= len(f.bots) {
		return exchange.Page[models.APIBot]{}, nil
	}
	return exchange.Page[models.APIBot]{Items: f.bots[idx], Received: len(f.bots[idx])}, nil
}

func (f *fakeClient) GetDealSafetyOrders(_ context.Context, dealID int64) ([]models.MarketOrder, error) {
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	return f.orders[dealID], nil
}

func (f *fakeClient) ListAccounts(context.Context) ([]models.APIAccount, error) {
	return f.accounts, nil
}

func (f *fakeClient) LoadAccountBalances(_ context.Context, accountID int64) error {
	f.loaded = append(f.loaded, accountID)
	return nil
}

func (f *fakeClient) GetAccountTable(_ context.Context, accountID int64) ([]models.AccountTableRow, error) {
	return f.tables[accountID], nil
}

func (f *fakeClient) Subscribe(context.Context) (<-chan exchange.Event, error) {
	return nil, nil
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upsert(ctx context.Context, table string, rows any) error {
	args := m.Called(ctx, table, rows)
	return args.Error(0)
}

func (m *mockStore) LastSyncTime(ctx context.Context, profileID string) (int64, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) SetLastSyncTime(ctx context.Context, profileID string, lastSyncTime int64) error {
	args := m.Called(ctx, profileID, lastSyncTime)
	return args.Error(0)
}

func (m *mockStore) DeleteProfileData(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

func testProfile() models.Profile {
	return models.Profile{
		ID:          "main",
		Credentials: models.Credentials{Key: "key", Secret: "secret", Mode: "paper"},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Profiles: []models.Profile{testProfile()},
		Sync: config.SyncConfig{
			ActiveProfile: "main",
			PassTimeout:   time.Minute,
			PageSize:      DefaultPageSize,
		},
	}
}

func newTestEngine(client exchange.Client, store Store) *Engine {
	factory := func(creds models.Credentials) (exchange.Client, error) {
		if !creds.Complete() {
			return nil, exchange.ErrMissingCredentials
		}
		return client, nil
	}
	e := New(testConfig(), factory, store, logger.Discard())
	e.now = func() time.Time { return baseTime }
	return e
}

// makeDeals returns n closed deals, newest first, one minute apart.
func makeDeals(startID int64, n int, newest time.Time) []models.APIDeal {
	deals := make([]models.APIDeal, 0, n)
	for i := 0; i < n; i++ {
		updated := newest.Add(-time.Duration(i) * time.Minute)
		closed := updated
		deals = append(deals, models.APIDeal{
			ID:        startID + int64(i),
			Pair:      "USDT_BTC",
			Status:    "completed",
			CreatedAt: updated.Add(-time.Hour),
			UpdatedAt: updated,
			ClosedAt:  &closed,
		})
	}
	return deals
}

func openDeal(id int64) models.APIDeal {
	return models.APIDeal{
		ID:        id,
		Pair:      "USDT_ETH",
		Status:    "bought",
		CreatedAt: baseTime.Add(-3 * time.Hour),
		UpdatedAt: baseTime.Add(-time.Minute),
	}
}
