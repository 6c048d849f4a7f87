package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

const defaultWSBasePath = "/ws"

// Endpoint resolves where the game server lives, the way the page would:
// a fixed dev host/port while developing, else the host the page was served from.
type Endpoint struct {
	Dev        bool   `env:"RC_DEV" envDefault:"false"`
	DevHost    string `env:"RC_DEV_SERVER_HOST" envDefault:"localhost"`
	DevPort    int    `env:"RC_DEV_SERVER_PORT" envDefault:"3000"`
	PageHost   string `env:"RC_PAGE_HOST"`
	PageSecure bool   `env:"RC_PAGE_SECURE" envDefault:"false"`
	BasePath   string `env:"RC_WS_BASE_PATH" envDefault:"/ws"`
}

// Host returns host[:port] of the game server.
func (e Endpoint) Host() string {
	if e.Dev {
		return net.JoinHostPort(strings.TrimSpace(e.DevHost), strconv.Itoa(e.DevPort))
	}
	return strings.TrimSpace(e.PageHost)
}

// BaseURL is the WebSocket prefix every endpoint path is appended to.
func (e Endpoint) BaseURL() string {
	scheme := "ws://"
	if e.PageSecure {
		scheme = "wss://"
	}
	base := strings.TrimSpace(e.BasePath)
	if base == "" {
		base = defaultWSBasePath
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return scheme + e.Host() + strings.TrimRight(base, "/")
}

// URL joins BaseURL with a caller supplied endpoint path.
func (e Endpoint) URL(path string) string {
	path = strings.TrimSpace(path)
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return e.BaseURL() + path
}

// APIBaseURL is the REST prefix served next to the socket.
func (e Endpoint) APIBaseURL() string {
	scheme := "http://"
	if e.PageSecure {
		scheme = "https://"
	}
	return scheme + e.Host() + "/api/v1"
}

// Validate checks that a host can be resolved for the current mode.
func (e Endpoint) Validate() error {
	if e.Dev {
		if strings.TrimSpace(e.DevHost) == "" {
			return errors.New("RC_DEV_SERVER_HOST is required in dev mode")
		}
		if e.DevPort <= 0 || e.DevPort > 65535 {
			return fmt.Errorf("RC_DEV_SERVER_PORT out of range: %d", e.DevPort)
		}
		return nil
	}
	if strings.TrimSpace(e.PageHost) == "" {
		return errors.New("RC_PAGE_HOST is required outside dev mode")
	}
	return nil
}

type AppConfig struct {
	Endpoint Endpoint

	// Path appended to the socket base, e.g. "/play/<room>" or "/".
	SocketPath string `env:"RC_ENDPOINT" envDefault:"/"`
	RoomID     string `env:"RC_ROOM_ID"`

	MessagesDir string `env:"RC_MESSAGES_DIR"`
	BoardOut    string `env:"RC_BOARD_OUT"`
	BoardFlip   bool   `env:"RC_BOARD_FLIP" envDefault:"false"`

	UpdateBuffer int `env:"RC_UPDATE_BUFFER" envDefault:"16"`
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.SocketPath = strings.TrimSpace(cfg.SocketPath)
	cfg.RoomID = strings.TrimSpace(cfg.RoomID)
	cfg.MessagesDir = strings.TrimSpace(cfg.MessagesDir)
	cfg.BoardOut = strings.TrimSpace(cfg.BoardOut)

	// a room id without an explicit endpoint means "play in that room"
	if cfg.RoomID != "" && (cfg.SocketPath == "" || cfg.SocketPath == "/") {
		cfg.SocketPath = "/play/" + cfg.RoomID
	}
	if cfg.UpdateBuffer <= 0 {
		cfg.UpdateBuffer = 16
	}

	if err := cfg.Endpoint.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
