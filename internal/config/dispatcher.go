package config

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"timesheet/internal/notify"
)

// CreateDispatcher builds notification delivery from the notify settings.
// With neither the log nor the outbox enabled notifications are discarded.
func CreateDispatcher(config *Config, logger *slog.Logger) (notify.Dispatcher, error) {
	tag, err := language.Parse(config.Notify.Language)
	if err != nil {
		return nil, fmt.Errorf("invalid notification language %q: %w", config.Notify.Language, err)
	}
	renderer := notify.NewRenderer(tag)

	var dispatchers notify.Multi
	if config.Notify.Log {
		dispatchers = append(dispatchers, notify.NewLogDispatcher(logger, renderer))
	}
	if config.Notify.OutboxDir != "" {
		outbox, err := notify.NewOutbox(config.Notify.OutboxDir, renderer)
		if err != nil {
			return nil, err
		}
		dispatchers = append(dispatchers, outbox)
	}

	switch len(dispatchers) {
	case 0:
		return notify.Discard{}, nil
	case 1:
		return dispatchers[0], nil
	default:
		return dispatchers, nil
	}
}
