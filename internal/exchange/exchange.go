package exchange

import (
	"context"
	"errors"

	"dcaportfolio/internal/models"
)

var ErrMissingCredentials = errors.New("Не заданы ключи API или режим.")

type EventType string

const (
	EventTypeDeal      EventType = "Deal"
	EventTypeReconnect EventType = "Reconnect"
)

type Event struct {
	Type EventType
	Deal *models.APIDeal
}

type BotQuery struct {
	Limit         int
	Offset        int
	SortBy        string
	SortDirection string
}

type DealQuery struct {
	Limit          int
	Offset         int
	Order          string
	OrderDirection string
	Scope          string
}

// Page is one listing response. Received counts the records the platform returned,
// including the ones rejected during decoding, so that short-page detection is not
// fooled by dropped records.
type Page[T any] struct {
	Items    []T
	Received int
}

type Client interface {
	ListBots(ctx context.Context, q BotQuery) (Page[models.APIBot], error)
	ListDeals(ctx context.Context, q DealQuery) (Page[models.APIDeal], error)
	GetDealSafetyOrders(ctx context.Context, dealID int64) ([]models.MarketOrder, error)
	ListAccounts(ctx context.Context) ([]models.APIAccount, error)
	LoadAccountBalances(ctx context.Context, accountID int64) error
	GetAccountTable(ctx context.Context, accountID int64) ([]models.AccountTableRow, error)
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// ClientFactory builds a client bound to one profile's credentials.
type ClientFactory func(creds models.Credentials) (Client, error)
