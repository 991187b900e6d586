package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"dcaportfolio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSyncDealsFullStopsAfterShortPage(t *testing.T) {
	client := &fakeClient{pages: [][]models.APIDeal{
		makeDeals(1, 1000, baseTime),
		makeDeals(1001, 1000, baseTime.Add(-1000*time.Minute)),
		makeDeals(2001, 400, baseTime.Add(-2000*time.Minute)),
		makeDeals(2401, 1000, baseTime.Add(-3000*time.Minute)),
	}}
	store := &mockStore{}
	store.On("SetLastSyncTime", mock.Anything, "main", baseTime.UnixMilli()).Return(nil).Once()
	e := newTestEngine(client, store)

	result, err := e.SyncDeals(context.Background(), 1000, models.SyncModeFull, testProfile(), DealSyncState{})
	require.NoError(t, err)

	assert.Len(t, client.dealCalls, 3)
	assert.Len(t, result.Deals, 2400)
	assert.Equal(t, baseTime.UnixMilli(), result.LastSyncTime)
	assert.False(t, result.State.Known)
	store.AssertExpectations(t)
}

func TestSyncDealsStopsAtCursor(t *testing.T) {
	client := &fakeClient{pages: [][]models.APIDeal{
		makeDeals(1, 10, baseTime),
		makeDeals(11, 10, baseTime.Add(-10*time.Minute)),
	}}
	store := &mockStore{}
	store.On("SetLastSyncTime", mock.Anything, "main", baseTime.UnixMilli()).Return(nil).Once()
	e := newTestEngine(client, store)

	profile := testProfile()
	profile.SyncStatus.Deals.LastSyncTime = baseTime.Add(-5 * time.Minute).UnixMilli()

	result, err := e.SyncDeals(context.Background(), 10, models.SyncModeFull, profile, DealSyncState{})
	require.NoError(t, err)
	assert.Len(t, client.dealCalls, 1)
	assert.Len(t, result.Deals, 10)
	store.AssertExpectations(t)
}

func TestSyncDealsCursorNeverMovesBack(t *testing.T) {
	client := &fakeClient{pages: [][]models.APIDeal{makeDeals(1, 3, baseTime)}}
	store := &mockStore{}
	e := newTestEngine(client, store)

	profile := testProfile()
	later := baseTime.Add(time.Hour).UnixMilli()
	profile.SyncStatus.Deals.LastSyncTime = later

	result, err := e.SyncDeals(context.Background(), 10, models.SyncModeFull, profile, DealSyncState{})
	require.NoError(t, err)
	assert.Equal(t, later, result.LastSyncTime)
	store.AssertNotCalled(t, "SetLastSyncTime", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncDealsAutoSyncShortCircuit(t *testing.T) {
	client := &fakeClient{
		active: []models.APIDeal{openDeal(7), openDeal(3)},
		pages:  [][]models.APIDeal{makeDeals(10, 2, baseTime)},
	}
	store := &mockStore{}
	store.On("SetLastSyncTime", mock.Anything, "main", baseTime.UnixMilli()).Return(nil).Once()
	e := newTestEngine(client, store)

	first, err := e.SyncDeals(context.Background(), 10, models.SyncModeAuto, testProfile(), DealSyncState{})
	require.NoError(t, err)
	assert.False(t, first.ShortCircuit)
	assert.Equal(t, []int64{3, 7}, first.State.OpenIDs)
	assert.Len(t, first.Deals, 4)
	assert.Len(t, client.dealCalls, 2)

	profile := testProfile()
	profile.SyncStatus.Deals.LastSyncTime = first.LastSyncTime
	client.dealCalls = nil
	client.active = []models.APIDeal{openDeal(3), openDeal(7)}

	second, err := e.SyncDeals(context.Background(), 10, models.SyncModeAuto, profile, first.State)
	require.NoError(t, err)
	assert.True(t, second.ShortCircuit)
	require.Len(t, client.dealCalls, 1)
	assert.Equal(t, "active", client.dealCalls[0].Scope)
	assert.Equal(t, 500, client.dealCalls[0].Limit)
	assert.Equal(t, client.active, second.Deals)
	assert.Equal(t, first.LastSyncTime, second.LastSyncTime)
	store.AssertExpectations(t)
}

func TestSyncDealsAutoSyncChangedOpenSet(t *testing.T) {
	client := &fakeClient{
		active: []models.APIDeal{openDeal(3), openDeal(8)},
		pages:  [][]models.APIDeal{makeDeals(10, 2, baseTime)},
	}
	store := &mockStore{}
	store.On("SetLastSyncTime", mock.Anything, "main", mock.Anything).Return(nil)
	e := newTestEngine(client, store)

	prev := DealSyncState{Known: true, OpenIDs: []int64{3, 7}}
	result, err := e.SyncDeals(context.Background(), 10, models.SyncModeAuto, testProfile(), prev)
	require.NoError(t, err)
	assert.False(t, result.ShortCircuit)
	assert.Len(t, client.dealCalls, 2)
	assert.Equal(t, []int64{3, 8}, result.State.OpenIDs)
}

func TestSyncDealsMissingCredentials(t *testing.T) {
	client := &fakeClient{}
	store := &mockStore{}
	e := newTestEngine(client, store)

	profile := testProfile()
	profile.Credentials.Secret = ""
	profile.SyncStatus.Deals.LastSyncTime = 42

	result, err := e.SyncDeals(context.Background(), 10, models.SyncModeAuto, profile, DealSyncState{})
	require.NoError(t, err)
	assert.Empty(t, result.Deals)
	assert.Equal(t, int64(42), result.LastSyncTime)
	assert.Empty(t, client.dealCalls)
	store.AssertNotCalled(t, "SetLastSyncTime", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncDealsErrorKeepsCursor(t *testing.T) {
	boom := errors.New("boom")
	client := &fakeClient{
		pages:   [][]models.APIDeal{makeDeals(1, 10, baseTime)},
		pageErr: map[int]error{1: boom},
	}
	store := &mockStore{}
	e := newTestEngine(client, store)

	prev := DealSyncState{Known: true, OpenIDs: []int64{1}}
	result, err := e.SyncDeals(context.Background(), 10, models.SyncModeFull, testProfile(), prev)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), result.LastSyncTime)
	assert.Equal(t, prev, result.State)
	store.AssertNotCalled(t, "SetLastSyncTime", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncBotsPagesUntilShortPage(t *testing.T) {
	full := make([]models.APIBot, botsPageSize)
	for i := range full {
		full[i] = models.APIBot{ID: int64(i + 1), Pairs: []string{"USDT_BTC"}}
	}
	client := &fakeClient{bots: [][]models.APIBot{full, {{ID: 5000, Pairs: []string{"USDT_ETH"}}}}}
	e := newTestEngine(client, &mockStore{})

	bots, err := e.SyncBots(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Len(t, bots, botsPageSize+1)
	require.Len(t, client.botCalls, 2)
	assert.Equal(t, "updated_at", client.botCalls[0].SortBy)
	assert.Equal(t, "desc", client.botCalls[0].SortDirection)
	assert.Equal(t, botsPageSize, client.botCalls[1].Offset)
	assert.Equal(t, "main", bots[0].ProfileID)
}

func TestRunPassPersistsEachEntity(t *testing.T) {
	client := &fakeClient{
		pages:    [][]models.APIDeal{makeDeals(1, 2, baseTime)},
		bots:     [][]models.APIBot{{{ID: 1, Pairs: []string{"USDT_BTC"}}}},
		accounts: []models.APIAccount{{ID: 1, Name: "Binance"}},
		tables:   map[int64][]models.AccountTableRow{1: {{AccountID: 1, CurrencyCode: "BTC", CurrencySlug: "btc"}}},
	}
	store := &mockStore{}
	store.On("LastSyncTime", mock.Anything, "main").Return(int64(0), nil)
	store.On("SetLastSyncTime", mock.Anything, "main", baseTime.UnixMilli()).Return(nil)
	store.On("Upsert", mock.Anything, models.TableDeals, mock.Anything).Return(nil).Once()
	store.On("Upsert", mock.Anything, models.TableBots, mock.Anything).Return(errors.New("disk full")).Once()
	store.On("Upsert", mock.Anything, models.TableAccounts, mock.Anything).Return(nil).Once()

	e := newTestEngine(client, store)
	e.cfg.Profiles[0].ReservedFunds = []models.ReservedFund{{ID: 1, IsEnabled: true}}

	report, err := e.RunPass(context.Background(), models.SyncModeFull, 10)
	require.Error(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Deals)
	assert.Equal(t, 0, report.Bots)
	assert.Equal(t, 1, report.Accounts)
	store.AssertExpectations(t)
}

func TestResetProfileDataForcesFullAutoSync(t *testing.T) {
	client := &fakeClient{
		active: []models.APIDeal{openDeal(3), openDeal(7)},
		pages:  [][]models.APIDeal{makeDeals(10, 5, baseTime)},
	}
	store := &mockStore{}
	store.On("LastSyncTime", mock.Anything, "main").Return(int64(0), nil)
	store.On("SetLastSyncTime", mock.Anything, "main", mock.Anything).Return(nil)
	store.On("Upsert", mock.Anything, models.TableDeals, mock.Anything).Return(nil)
	store.On("DeleteProfileData", mock.Anything, "main").Return(nil).Once()
	e := newTestEngine(client, store)

	first, err := e.syncDealsPass(context.Background(), "run-1", models.SyncModeAuto, 10)
	require.NoError(t, err)
	assert.False(t, first.ShortCircuit)
	assert.Equal(t, 7, first.Deals)
	assert.True(t, e.DealState().Known)

	require.NoError(t, e.ResetProfileData(context.Background(), "main"))
	assert.Equal(t, DealSyncState{}, e.DealState())

	client.dealCalls = nil
	second, err := e.syncDealsPass(context.Background(), "run-2", models.SyncModeAuto, 10)
	require.NoError(t, err)
	assert.False(t, second.ShortCircuit)
	assert.Equal(t, 7, second.Deals)
	assert.Len(t, client.dealCalls, 2)
	store.AssertExpectations(t)
}

func TestResetProfileDataKeepsStateOnError(t *testing.T) {
	store := &mockStore{}
	store.On("DeleteProfileData", mock.Anything, "main").Return(errors.New("locked")).Once()
	e := newTestEngine(&fakeClient{}, store)
	e.dealState = DealSyncState{Known: true, OpenIDs: []int64{1}}

	require.Error(t, e.ResetProfileData(context.Background(), "main"))
	assert.True(t, e.DealState().Known)
}
