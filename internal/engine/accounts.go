package engine

import (
	"context"
	"errors"
	"fmt"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/models"
)

// SyncAccounts refreshes and flattens the balances of the accounts the profile tracks.
func (e *Engine) SyncAccounts(ctx context.Context, profile models.Profile) ([]models.AccountRow, error) {
	client, err := e.factory(profile.Credentials)
	if errors.Is(err, exchange.ErrMissingCredentials) {
		e.logEntry().WithField("profile", profile.ID).Warn("Ключи API не заданы, синхронизация счетов пропущена.")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("Не удалось получить счета: %w", err)
	}

	enabled := profile.EnabledAccountIDs()
	var rows []models.AccountRow
	for _, account := range accounts {
		if !enabled[account.ID] {
			continue
		}

		if err := client.LoadAccountBalances(ctx, account.ID); err != nil {
			return nil, fmt.Errorf("Не удалось обновить балансы счёта %d: %w", account.ID, err)
		}
		table, err := client.GetAccountTable(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("Не удалось получить позиции счёта %d: %w", account.ID, err)
		}

		for _, r := range table {
			rows = append(rows, models.AccountRow{
				ID:           fmt.Sprintf("%d-%s", r.AccountID, r.CurrencySlug),
				ProfileID:    profile.ID,
				AccountID:    r.AccountID,
				AccountName:  account.Name,
				ExchangeName: account.ExchangeName,
				MarketCode:   account.MarketCode,
				CurrencyCode: r.CurrencyCode,
				Percentage:   r.Percentage,
				Position:     r.Position,
				OnOrders:     r.OnOrders,
				BTCValue:     r.BTCValue,
				USDValue:     r.USDValue,
			})
		}
	}
	return rows, nil
}

// AccountSummary lists every account reachable with the given keys, tracked or not.
func (e *Engine) AccountSummary(ctx context.Context, creds models.Credentials) ([]models.AccountSummary, error) {
	client, err := e.factory(creds)
	if err != nil {
		return nil, err
	}
	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("Не удалось получить счета: %w", err)
	}
	out := make([]models.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, models.AccountSummary{ID: a.ID, Name: a.Name})
	}
	return out, nil
}
