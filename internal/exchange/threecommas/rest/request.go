package rest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// doRequest signs path?query with the profile secret and returns the raw body.
// Parameters always travel in the query string, POST included.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	fullPath := apiPrefix + path
	signed := fullPath
	if len(params) > 0 {
		signed += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+signed, nil)
	if err != nil {
		return nil, fmt.Errorf("Не удалось создать запрос: %w", err)
	}

	req.Header.Set("APIKEY", c.apiKey)
	req.Header.Set("Signature", Sign(c.secret, signed))
	if c.mode == "paper" {
		req.Header.Set("Forced-Mode", "paper")
	} else if c.mode != "" {
		req.Header.Set("Forced-Mode", "real")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Ошибка запроса %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Не удалось прочитать ответ: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Code: resp.Status}
		if gjson.ValidBytes(data) {
			parsed := gjson.ParseBytes(data)
			if code := parsed.Get("error"); code.Exists() {
				apiErr.Code = code.String()
			}
			apiErr.Description = parsed.Get("error_description").String()
		}
		return nil, apiErr
	}

	if c.log != nil {
		c.log.WithComponent("threecommas_rest").WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"bytes":  len(data),
		}).Trace("response")
	}

	return data, nil
}

func Sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
