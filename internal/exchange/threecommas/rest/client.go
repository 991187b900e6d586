package rest

import (
	"net/http"
	"strings"
	"time"

	"dcaportfolio/internal/logger"
)

func New(baseURL, apiKey, secret, mode string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		secret:  secret,
		mode:    mode,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}
