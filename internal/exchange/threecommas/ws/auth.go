package ws

import (
	"encoding/json"
	"fmt"

	"dcaportfolio/internal/exchange/threecommas/rest"
)

// buildIdentifier signs the channel endpoint; the identifier itself is a JSON string
// embedded in the subscribe command.
func buildIdentifier(apiKey, secret string) (string, error) {
	id := channelIdentifier{
		Channel: dealsChannel,
		Users: []channelUser{{
			APIKey:    apiKey,
			Signature: rest.Sign(secret, dealsEndpoint),
		}},
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("Не удалось собрать identifier: %w", err)
	}
	return string(raw), nil
}
