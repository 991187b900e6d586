package rest

import (
	"context"
	"fmt"
	"net/http"

	"dcaportfolio/internal/models"

	"github.com/tidwall/gjson"
)

func (c *Client) ListAccounts(ctx context.Context) ([]models.APIAccount, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/ver1/accounts", nil)
	if err != nil {
		return nil, err
	}
	items, err := parseList(data)
	if err != nil {
		return nil, err
	}
	return decodeAll(c, "account", items, decodeAccount), nil
}

// LoadAccountBalances asks the platform to refresh balances from the exchange.
func (c *Client) LoadAccountBalances(ctx context.Context, accountID int64) error {
	_, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/ver1/accounts/%d/load_balances", accountID), nil)
	return err
}

func (c *Client) GetAccountTable(ctx context.Context, accountID int64) ([]models.AccountTableRow, error) {
	data, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/ver1/accounts/%d/account_table_data", accountID), nil)
	if err != nil {
		return nil, err
	}
	items, err := parseList(data)
	if err != nil {
		return nil, err
	}
	return decodeAll(c, "account_row", items, func(r gjson.Result) (models.AccountTableRow, error) {
		return decodeAccountTableRow(r, accountID)
	}), nil
}
