package engine

import (
	"context"
	"errors"
	"fmt"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	botsPageSize  = 1000
	maxBotsOffset = 5000
)

func newRunID() string {
	return uuid.NewString()
}

// SyncDeals fetches deals changed since the profile's cursor. In autoSync mode the open
// deals are read first and the pass stops there if they match prev. The cursor is
// written only after every page was fetched, and only forward.
func (e *Engine) SyncDeals(ctx context.Context, pageSize int, mode models.SyncMode, profile models.Profile, prev DealSyncState) (DealSyncResult, error) {
	cursor := profile.SyncStatus.Deals.LastSyncTime
	log := e.logEntry().WithField("profile", profile.ID).WithField("mode", mode)

	client, err := e.factory(profile.Credentials)
	if errors.Is(err, exchange.ErrMissingCredentials) {
		log.Warn("Ключи API не заданы, синхронизация сделок пропущена.")
		return DealSyncResult{LastSyncTime: cursor, State: prev}, nil
	}
	if err != nil {
		return DealSyncResult{LastSyncTime: cursor, State: prev}, err
	}

	var deals []models.APIDeal
	state := prev

	if mode == models.SyncModeAuto {
		page, err := client.ListDeals(ctx, exchange.DealQuery{Limit: activeDealsLimit, Scope: "active"})
		if err != nil {
			return DealSyncResult{LastSyncTime: cursor, State: prev}, fmt.Errorf("Не удалось получить активные сделки: %w", err)
		}
		state = newDealSyncState(page.Items)
		if prev.Unchanged(state) {
			log.WithField("open", len(page.Items)).Debug("Активные сделки не изменились.")
			return DealSyncResult{
				Deals:        page.Items,
				LastSyncTime: cursor,
				State:        prev,
				ShortCircuit: true,
			}, nil
		}
		deals = append(deals, page.Items...)
	}

	pager := NewDealPager(client, pageSize, cursor)
	for {
		items, ok, err := pager.Next(ctx)
		if err != nil {
			return DealSyncResult{LastSyncTime: cursor, State: prev}, fmt.Errorf("Не удалось получить страницу сделок: %w", err)
		}
		if !ok {
			break
		}
		deals = append(deals, items...)
		log.WithFields(logrus.Fields{
			"page":     pager.Pages(),
			"received": len(items),
			"total":    len(deals),
		}).Debug("Страница сделок получена.")
	}

	if newest := pager.Newest(); newest > cursor {
		if err := e.store.SetLastSyncTime(ctx, profile.ID, newest); err != nil {
			return DealSyncResult{LastSyncTime: cursor, State: prev}, fmt.Errorf("Не удалось сохранить время синхронизации: %w", err)
		}
		cursor = newest
	}

	log.WithFields(logrus.Fields{
		"deals":          len(deals),
		"pages":          pager.Pages(),
		"last_sync_time": cursor,
	}).Info("Сделки синхронизированы.")

	return DealSyncResult{Deals: deals, LastSyncTime: cursor, State: state}, nil
}

// SyncBots reads every bot, newest first, and normalizes them for the profile.
func (e *Engine) SyncBots(ctx context.Context, profile models.Profile) ([]models.Bot, error) {
	client, err := e.factory(profile.Credentials)
	if errors.Is(err, exchange.ErrMissingCredentials) {
		e.logEntry().WithField("profile", profile.ID).Warn("Ключи API не заданы, синхронизация ботов пропущена.")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raw []models.APIBot
	for offset := 0; offset < maxBotsOffset; offset += botsPageSize {
		page, err := client.ListBots(ctx, exchange.BotQuery{
			Limit:         botsPageSize,
			Offset:        offset,
			SortBy:        "updated_at",
			SortDirection: "desc",
		})
		if err != nil {
			return nil, fmt.Errorf("Не удалось получить ботов: %w", err)
		}
		raw = append(raw, page.Items...)
		if page.Received < botsPageSize {
			break
		}
	}

	bots := NormalizeBots(raw)
	for i := range bots {
		bots[i].ProfileID = profile.ID
	}
	return bots, nil
}

// RunPass syncs deals, then bots and accounts. Each entity type is persisted on its own,
// so one failing does not roll back the others.
func (e *Engine) RunPass(ctx context.Context, mode models.SyncMode, pageSize int) (PassReport, error) {
	runID := newRunID()
	report, dealsErr := e.syncDealsPass(ctx, runID, mode, pageSize)
	bots, accounts, botsErr := e.syncBotsPass(ctx, runID)
	report.Bots = bots
	report.Accounts = accounts
	return report, errors.Join(dealsErr, botsErr)
}

func (e *Engine) syncDealsPass(ctx context.Context, runID string, mode models.SyncMode, pageSize int) (PassReport, error) {
	report := PassReport{RunID: runID, Mode: mode}
	log := e.log.WithRequestID(runID).WithField("component", "engine")

	profile, err := e.profile(ctx)
	if err != nil {
		return report, err
	}
	if pageSize <= 0 {
		pageSize = profile.DealsPageSize
	}
	if pageSize <= 0 {
		pageSize = e.cfg.Sync.PageSize
	}

	result, err := e.SyncDeals(ctx, pageSize, mode, profile, e.dealState)
	if err != nil {
		return report, err
	}
	e.dealState = result.State
	report.LastSyncTime = result.LastSyncTime
	report.ShortCircuit = result.ShortCircuit

	if len(result.Deals) == 0 {
		return report, nil
	}

	deals := e.NormalizeDeals(ctx, uniqueDeals(result.Deals), profile)
	if err := e.store.Upsert(ctx, models.TableDeals, deals); err != nil {
		return report, fmt.Errorf("Не удалось сохранить сделки: %w", err)
	}
	report.Deals = len(deals)

	log.WithFields(logrus.Fields{
		"deals":          report.Deals,
		"last_sync_time": report.LastSyncTime,
		"short_circuit":  report.ShortCircuit,
	}).Info("Проход синхронизации сделок завершён.")

	return report, nil
}

func (e *Engine) syncBotsPass(ctx context.Context, runID string) (int, int, error) {
	log := e.log.WithRequestID(runID).WithField("component", "engine")

	profile, err := e.profile(ctx)
	if err != nil {
		return 0, 0, err
	}

	var errs []error
	botCount := 0
	bots, err := e.SyncBots(ctx, profile)
	if err != nil {
		errs = append(errs, err)
	} else if len(bots) > 0 {
		if err := e.store.Upsert(ctx, models.TableBots, bots); err != nil {
			errs = append(errs, fmt.Errorf("Не удалось сохранить ботов: %w", err))
		} else {
			botCount = len(bots)
		}
	}

	accountCount := 0
	rows, err := e.SyncAccounts(ctx, profile)
	if err != nil {
		errs = append(errs, err)
	} else if len(rows) > 0 {
		if err := e.store.Upsert(ctx, models.TableAccounts, rows); err != nil {
			errs = append(errs, fmt.Errorf("Не удалось сохранить счета: %w", err))
		} else {
			accountCount = len(rows)
		}
	}

	log.WithFields(logrus.Fields{
		"bots":     botCount,
		"accounts": accountCount,
	}).Info("Проход синхронизации ботов и счетов завершён.")

	return botCount, accountCount, errors.Join(errs...)
}

// ResetProfileData wipes the synced rows of the profile and forgets the open deal set,
// so the next autoSync fetches every page again. Must run on the engine goroutine (Do).
func (e *Engine) ResetProfileData(ctx context.Context, profileID string) error {
	if err := e.store.DeleteProfileData(ctx, profileID); err != nil {
		return err
	}
	e.dealState = DealSyncState{}
	e.log.WithProfile(profileID).WithField("component", "engine").Warn("Данные профиля удалены, состояние синхронизации сброшено.")
	return nil
}

// profile returns the active profile with its stored cursor.
func (e *Engine) profile(ctx context.Context) (models.Profile, error) {
	profile, err := e.cfg.ActiveProfile()
	if err != nil {
		return models.Profile{}, err
	}
	lastSyncTime, err := e.store.LastSyncTime(ctx, profile.ID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("Не удалось прочитать время синхронизации: %w", err)
	}
	profile.SyncStatus.Deals.LastSyncTime = lastSyncTime
	return profile, nil
}

// uniqueDeals drops repeats: an open deal can come back both from the active listing
// and from the first page.
func uniqueDeals(deals []models.APIDeal) []models.APIDeal {
	seen := make(map[int64]bool, len(deals))
	out := make([]models.APIDeal, 0, len(deals))
	for _, d := range deals {
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		out = append(out, d)
	}
	return out
}
