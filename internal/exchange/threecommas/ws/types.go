package ws

import (
	"encoding/json"
	"sync"
	"time"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	dealsChannel  = "DealsChannel"
	dealsEndpoint = "/deals"
)

type Client struct {
	url          string
	apiKey       string
	secret       string
	log          *logger.Logger
	mu           sync.Mutex
	conn         *websocket.Conn
	events       chan exchange.Event
	stopCh       chan struct{}
	stopOnce     sync.Once
	identifier   string
	reconnectMin time.Duration
	reconnectMax time.Duration
}

// Message is an ActionCable frame.
type Message struct {
	Type       string          `json:"type,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	Message    json.RawMessage `json:"message,omitempty"`
}

type Command struct {
	Command    string `json:"command"`
	Identifier string `json:"identifier"`
}

type channelUser struct {
	APIKey    string `json:"api_key"`
	Signature string `json:"signature"`
}

type channelIdentifier struct {
	Channel string        `json:"channel"`
	Users   []channelUser `json:"users"`
}
