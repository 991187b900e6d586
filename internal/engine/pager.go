package engine

import (
	"context"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/models"
)

const (
	DefaultPageSize  = 1000
	MaxDealOffset    = 250000
	activeDealsLimit = 500
	dealsOrder       = "updated_at"
	dealsScope       = "active, completed, finished"
)

type DealLister interface {
	ListDeals(ctx context.Context, q exchange.DealQuery) (exchange.Page[models.APIDeal], error)
}

// DealPager walks deals newest first. Each page is requested only after the previous
// one has been checked against the stop condition; a finished pager stays finished.
type DealPager struct {
	client   DealLister
	pageSize int
	cursor   int64
	offset   int
	done     bool
	newest   int64
	fetched  int
}

func NewDealPager(client DealLister, pageSize int, cursor int64) *DealPager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &DealPager{
		client:   client,
		pageSize: pageSize,
		cursor:   cursor,
	}
}

// Next returns the following page, or false once the sequence is exhausted.
func (p *DealPager) Next(ctx context.Context) ([]models.APIDeal, bool, error) {
	if p.done || p.offset >= MaxDealOffset {
		p.done = true
		return nil, false, nil
	}

	page, err := p.client.ListDeals(ctx, exchange.DealQuery{
		Limit:          p.pageSize,
		Offset:         p.offset,
		Order:          dealsOrder,
		OrderDirection: "desc",
		Scope:          dealsScope,
	})
	if err != nil {
		p.done = true
		return nil, false, err
	}
	if page.Received == 0 {
		p.done = true
		return nil, false, nil
	}

	if p.offset == 0 && len(page.Items) > 0 {
		p.newest = page.Items[0].UpdatedAt.UnixMilli()
	}
	p.offset += p.pageSize
	p.fetched++
	p.done = shouldStop(page, p.pageSize, p.cursor)

	return page.Items, true, nil
}

// Newest is the updated_at (millis) of the first record of the first page.
func (p *DealPager) Newest() int64 {
	return p.newest
}

func (p *DealPager) Pages() int {
	return p.fetched
}

// shouldStop ends paging on a short page or once the page reaches records
// that are not newer than the cursor.
func shouldStop(page exchange.Page[models.APIDeal], pageSize int, cursor int64) bool {
	if page.Received != pageSize {
		return true
	}
	if len(page.Items) == 0 {
		return false
	}
	oldest := page.Items[len(page.Items)-1].UpdatedAt.UnixMilli()
	return oldest <= cursor
}
