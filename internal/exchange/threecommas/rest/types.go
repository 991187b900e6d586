package rest

import (
	"errors"
	"fmt"
	"net/http"

	"dcaportfolio/internal/logger"
)

const apiPrefix = "/public/api"

var ErrInvalidRecord = errors.New("Некорректная запись API")

type Client struct {
	baseURL    string
	apiKey     string
	secret     string
	mode       string
	httpClient *http.Client
	log        *logger.Logger
}

// APIError is the platform's error payload: {"error": "...", "error_description": "..."}.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("Ошибка 3commas: %s: %s (status=%d)", e.Code, e.Description, e.Status)
	}
	return fmt.Sprintf("Ошибка 3commas: %s (status=%d)", e.Code, e.Status)
}

func (e *APIError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}
