package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type syncStatusRow struct {
	ProfileID    string `gorm:"primaryKey"`
	LastSyncTime int64
}

func (syncStatusRow) TableName() string {
	return "sync_status"
}

func (s *Store) LastSyncTime(ctx context.Context, profileID string) (int64, error) {
	var row syncStatusRow
	err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.LastSyncTime, nil
}

// SetLastSyncTime never moves the cursor backwards.
func (s *Store) SetLastSyncTime(ctx context.Context, profileID string, lastSyncTime int64) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_sync_time": gorm.Expr("MAX(sync_status.last_sync_time, excluded.last_sync_time)"),
		}),
	}).Create(&syncStatusRow{ProfileID: profileID, LastSyncTime: lastSyncTime}).Error
}
