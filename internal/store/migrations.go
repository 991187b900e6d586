package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type migrationRow struct {
	Version   int `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	AppliedAt time.Time
}

func (migrationRow) TableName() string {
	return "schema_migrations"
}

type migration struct {
	version int
	name    string
	sql     string
}

// Data fixes applied once per database, in order.
var migrations = []migration{
	{
		version: 1,
		name:    "reset_synced_bots",
		sql:     `DELETE FROM bots WHERE origin = 'sync'`,
	},
	{
		// The platform reports failed and cancelled deals inconsistently.
		version: 2,
		name:    "drop_failed_cancelled_deals",
		sql:     `DELETE FROM deals WHERE status IN ('failed', 'cancelled')`,
	},
}

func migrate(db *gorm.DB) error {
	var applied []migrationRow
	if err := db.Find(&applied).Error; err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.sql).Error; err != nil {
				return err
			}
			return tx.Create(&migrationRow{Version: m.version, Name: m.name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("Миграция %d (%s) не применена: %w", m.version, m.name, err)
		}
	}
	return nil
}
