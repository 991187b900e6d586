package threecommas

import (
	"context"

	"dcaportfolio/internal/config"
	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/exchange/threecommas/rest"
	"dcaportfolio/internal/exchange/threecommas/ws"
	"dcaportfolio/internal/logger"
	"dcaportfolio/internal/models"
)

// Client binds the REST client and the deal stream to one set of credentials.
type Client struct {
	*rest.Client
	wsURL  string
	apiKey string
	secret string
	log    *logger.Logger
}

var _ exchange.Client = (*Client)(nil)

// NewFactory returns a factory that refuses to build a client for incomplete credentials.
func NewFactory(cfg config.ThreeCommasConfig, log *logger.Logger) exchange.ClientFactory {
	return func(creds models.Credentials) (exchange.Client, error) {
		if !creds.Complete() {
			return nil, exchange.ErrMissingCredentials
		}
		return &Client{
			Client: rest.New(cfg.BaseURL, creds.Key, creds.Secret, creds.Mode, cfg.Timeout, log),
			wsURL:  cfg.WSURL,
			apiKey: creds.Key,
			secret: creds.Secret,
			log:    log,
		}, nil
	}
}

func (c *Client) Subscribe(ctx context.Context) (<-chan exchange.Event, error) {
	stream, err := ws.New(c.wsURL, c.apiKey, c.secret, c.log)
	if err != nil {
		return nil, err
	}
	if err := stream.Connect(ctx); err != nil {
		return nil, err
	}
	return stream.Events(), nil
}
