package engine

import (
	"context"
	"slices"

	"dcaportfolio/internal/models"
)

// DealSyncState is what an autoSync pass remembers about the previous one.
type DealSyncState struct {
	Known   bool    `json:"known"`
	OpenIDs []int64 `json:"open_ids"`
}

func newDealSyncState(deals []models.APIDeal) DealSyncState {
	ids := make([]int64, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.ID)
	}
	slices.Sort(ids)
	return DealSyncState{Known: true, OpenIDs: ids}
}

// Unchanged reports whether next holds the same open deal ids as s.
func (s DealSyncState) Unchanged(next DealSyncState) bool {
	return s.Known && next.Known && slices.Equal(s.OpenIDs, next.OpenIDs)
}

type DealSyncResult struct {
	Deals        []models.APIDeal `json:"deals"`
	LastSyncTime int64            `json:"last_sync_time"`
	State        DealSyncState    `json:"state"`
	ShortCircuit bool             `json:"short_circuit"`
}

type PassReport struct {
	RunID        string          `json:"run_id"`
	Mode         models.SyncMode `json:"mode"`
	Bots         int             `json:"bots"`
	Deals        int             `json:"deals"`
	Accounts     int             `json:"accounts"`
	LastSyncTime int64           `json:"last_sync_time"`
	ShortCircuit bool            `json:"short_circuit"`
}

type Sink interface {
	Upsert(ctx context.Context, table string, rows any) error
}

type CursorStore interface {
	LastSyncTime(ctx context.Context, profileID string) (int64, error)
	SetLastSyncTime(ctx context.Context, profileID string, lastSyncTime int64) error
}

type ProfileStore interface {
	DeleteProfileData(ctx context.Context, profileID string) error
}

type Store interface {
	Sink
	CursorStore
	ProfileStore
}
