package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"dcaportfolio/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const upsertBatchSize = 50

var tables = map[string]interface{}{
	models.TableBots:     &models.Bot{},
	models.TableDeals:    &models.Deal{},
	models.TableAccounts: &models.AccountRow{},
}

type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("Не задан путь к базе данных.")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("Не удалось открыть базу данных: %w", err)
	}

	for table, model := range tables {
		if err := db.Table(table).AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("Не удалось создать таблицу %s: %w", table, err)
		}
	}
	if err := db.AutoMigrate(&syncStatusRow{}, &migrationRow{}); err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Upsert writes rows into table, replacing existing rows with the same id.
func (s *Store) Upsert(ctx context.Context, table string, rows any) error {
	if _, ok := tables[table]; !ok {
		return fmt.Errorf("Неизвестная таблица: %s", table)
	}
	v := reflect.ValueOf(rows)
	if v.Kind() == reflect.Slice && v.Len() == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Table(table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(rows, upsertBatchSize).Error
}
