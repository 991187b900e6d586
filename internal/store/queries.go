package store

import (
	"context"
	"fmt"

	"dcaportfolio/internal/models"

	"gorm.io/gorm"
)

type DealStatus string

const (
	DealStatusAll    DealStatus = ""
	DealStatusOpen   DealStatus = "open"
	DealStatusClosed DealStatus = "closed"
)

func ParseDealStatus(s string) (DealStatus, error) {
	switch DealStatus(s) {
	case DealStatusAll, "all":
		return DealStatusAll, nil
	case DealStatusOpen, DealStatusClosed:
		return DealStatus(s), nil
	}
	return "", fmt.Errorf("Неизвестный статус сделок: %s", s)
}

func (s *Store) Bots(ctx context.Context, profileID string) ([]models.Bot, error) {
	var bots []models.Bot
	if err := s.db.WithContext(ctx).
		Table(models.TableBots).
		Where("profile_id = ?", profileID).
		Order("updated_at DESC, id DESC").
		Find(&bots).Error; err != nil {
		return nil, err
	}
	return bots, nil
}

func (s *Store) Deals(ctx context.Context, profileID string, status DealStatus) ([]models.Deal, error) {
	var deals []models.Deal
	q := s.db.WithContext(ctx).
		Table(models.TableDeals).
		Where("profile_id = ?", profileID)
	switch status {
	case DealStatusOpen:
		q = q.Where("closed_at IS NULL")
	case DealStatusClosed:
		q = q.Where("closed_at IS NOT NULL")
	}
	if err := q.Order("updated_at DESC, id DESC").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

func (s *Store) AccountRows(ctx context.Context, profileID string) ([]models.AccountRow, error) {
	var rows []models.AccountRow
	if err := s.db.WithContext(ctx).
		Table(models.TableAccounts).
		Where("profile_id = ?", profileID).
		Order("account_id, currency_code").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteProfileData removes every synced row of the profile and resets its cursor.
func (s *Store) DeleteProfileData(ctx context.Context, profileID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{models.TableBots, models.TableDeals, models.TableAccounts, "sync_status"} {
			if err := tx.Exec(fmt.Sprintf(`DELETE FROM "%s" WHERE profile_id = ?`, table), profileID).Error; err != nil {
				return fmt.Errorf("Не удалось очистить %s: %w", table, err)
			}
		}
		return nil
	})
}
