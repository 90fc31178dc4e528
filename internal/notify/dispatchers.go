package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"timesheet/internal/errors"
)

// LogDispatcher delivers notifications as structured log records.
type LogDispatcher struct {
	logger   *slog.Logger
	renderer *Renderer
}

// NewLogDispatcher creates a LogDispatcher. A nil renderer renders in English.
func NewLogDispatcher(logger *slog.Logger, renderer *Renderer) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if renderer == nil {
		renderer = NewRenderer(supported[0])
	}
	return &LogDispatcher{logger: logger, renderer: renderer}
}

// Dispatch implements Dispatcher.
func (d *LogDispatcher) Dispatch(ctx context.Context, req Request) error {
	if err := validate(req); err != nil {
		return err
	}
	msg := d.renderer.Render(req)
	d.logger.InfoContext(ctx, "notification",
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

// outboxRecord is one line of an outbox file.
type outboxRecord struct {
	Message
	CreatedAt time.Time `json:"created_at"`
}

// Outbox appends rendered messages as JSON lines to one file per day in dir,
// for pickup by a separate mail relay.
type Outbox struct {
	dir      string
	renderer *Renderer
	now      func() time.Time

	mu sync.Mutex
}

// NewOutbox creates the directory if needed and returns an Outbox writing to it.
func NewOutbox(dir string, renderer *Renderer) (*Outbox, error) {
	if dir == "" {
		return nil, errors.NewInvalidInputError("outbox directory", dir, "must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create outbox directory: %w", err)
	}
	if renderer == nil {
		renderer = NewRenderer(supported[0])
	}
	return &Outbox{dir: dir, renderer: renderer, now: time.Now}, nil
}

// Path returns the file a message created at t is written to.
func (o *Outbox) Path(t time.Time) string {
	return filepath.Join(o.dir, "outbox-"+t.UTC().Format("2006-01-02")+".jsonl")
}

// Dispatch implements Dispatcher.
func (o *Outbox) Dispatch(ctx context.Context, req Request) error {
	if err := validate(req); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := o.now()
	line, err := json.Marshal(outboxRecord{Message: o.renderer.Render(req), CreatedAt: now.UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	line = append(line, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()

	f, err := os.OpenFile(o.Path(now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open outbox: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to write outbox: %w", err)
	}
	return f.Close()
}
