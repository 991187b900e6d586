package models

import "strings"

type Credentials struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
	Mode   string `json:"mode"`
}

func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.Key) != "" && strings.TrimSpace(c.Secret) != "" && strings.TrimSpace(c.Mode) != ""
}

type ReservedFund struct {
	ID            int64   `json:"id" mapstructure:"id"`
	AccountName   string  `json:"account_name" mapstructure:"account_name"`
	ReservedFunds float64 `json:"reserved_funds" mapstructure:"reserved_funds"`
	IsEnabled     bool    `json:"is_enabled" mapstructure:"is_enabled"`
}

type DealSyncStatus struct {
	LastSyncTime int64 `json:"last_sync_time"`
}

type SyncStatus struct {
	Deals DealSyncStatus `json:"deals"`
}

type Profile struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Credentials   Credentials    `json:"-"`
	SyncStatus    SyncStatus     `json:"sync_status"`
	ReservedFunds []ReservedFund `json:"reserved_funds"`
	DealsPageSize int            `json:"deals_page_size"`
}

func (p Profile) EnabledAccountIDs() map[int64]bool {
	ids := make(map[int64]bool, len(p.ReservedFunds))
	for _, fund := range p.ReservedFunds {
		if fund.IsEnabled {
			ids[fund.ID] = true
		}
	}
	return ids
}
