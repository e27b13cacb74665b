package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = 8080

	// DefaultLogLevel is used when LOG_LEVEL is not set.
	DefaultLogLevel = "info"

	// DefaultLogFormat is used when LOG_FORMAT is not set.
	DefaultLogFormat = "json"

	// DefaultChatTitle is the title shown in the chat bubble header.
	DefaultChatTitle = "Dialogflow Messenger"

	// DefaultLanguageCode is the agent language passed to the widget.
	DefaultLanguageCode = "en"

	// DefaultIntent is the event sent to the agent when the widget loads.
	DefaultIntent = "WELCOME"
)

var (
	ErrInvalidPort      = errors.New("invalid port")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrEmptyWidgetField = errors.New("widget field is required")
)

// Widget holds the attributes rendered into the df-messenger element.
type Widget struct {
	AgentID      string
	ChatTitle    string
	LanguageCode string
	Intent       string
}

// Config is the runtime configuration of the server process.
type Config struct {
	Port      int
	LogLevel  string
	LogFormat string

	// TemplatePath overrides the embedded page template when non-empty.
	TemplatePath string

	Widget Widget
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Port:      DefaultPort,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Widget: Widget{
			ChatTitle:    DefaultChatTitle,
			LanguageCode: DefaultLanguageCode,
			Intent:       DefaultIntent,
		},
	}
}

// Addr returns the listen address, bound to all interfaces.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks that the configuration can be used to start the server.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidPort, c.Port)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}

	if strings.TrimSpace(c.Widget.ChatTitle) == "" {
		return fmt.Errorf("%w: chat title", ErrEmptyWidgetField)
	}
	if strings.TrimSpace(c.Widget.LanguageCode) == "" {
		return fmt.Errorf("%w: language code", ErrEmptyWidgetField)
	}

	return nil
}
