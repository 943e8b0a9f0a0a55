// Package board is the entry point for every board mutation and read.
// Structural changes (create, move, delete) run under the per-scope locks
// and inside one storage transaction each, so positions stay dense in
// every column and in the project list.
package board

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/notify"
	"github.com/existflow/kissboard/internal/ordering"
)

var (
	// ErrNotFound is returned when a project, task or image id does not exist.
	ErrNotFound = db.ErrNotFound
	// ErrInvalid is returned when input is rejected before anything is written.
	ErrInvalid = errors.New("invalid input")
	// ErrPrecondition is returned when stored positions disagree with the
	// requested change. The transaction is rolled back.
	ErrPrecondition = ordering.ErrPrecondition
)

var errScopeChanged = errors.New("task changed column while waiting for lock")

// Board owns the ordering engines for tasks and projects.
type Board struct {
	db    *db.DB
	locks *ordering.Locks
	hub   *notify.Hub
	now   func() time.Time
	newID func() string
}

// Option configures a Board
type Option func(*Board)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithIDs replaces the uuid generator
func WithIDs(newID func() string) Option {
	return func(b *Board) { b.newID = newID }
}

// WithHub publishes changes to hub instead of a private one
func WithHub(hub *notify.Hub) Option {
	return func(b *Board) { b.hub = hub }
}

// New creates a Board on top of an open database
func New(database *db.DB, opts ...Option) *Board {
	b := &Board{
		db:    database,
		locks: ordering.NewLocks(),
		hub:   notify.NewHub(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Changes returns the hub every committed mutation is published on
func (b *Board) Changes() *notify.Hub {
	return b.hub
}

// DB returns the underlying database
func (b *Board) DB() *db.DB {
	return b.db
}

func (b *Board) publish(kind notify.Kind, projectID, taskID, imageID string) {
	b.hub.Publish(notify.Change{
		Kind:      kind,
		ProjectID: projectID,
		TaskID:    taskID,
		ImageID:   imageID,
		At:        b.now(),
	})
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid("%s is required", field)
	}
	return value, nil
}

func checkStatus(status model.Status) (model.Status, error) {
	if status == "" {
		return model.StatusTodo, nil
	}
	if !status.Valid() {
		return "", invalid("unknown status %q", status)
	}
	return status, nil
}

// logResult logs a finished operation at DEBUG, or WARN when it failed.
func logResult(err error, msg string, fields ...logger.Field) {
	if err != nil {
		logger.Warn(msg+" failed", append(fields, logger.F("error", err))...)
		return
	}
	logger.Debug(msg, fields...)
}

func notFound(what, id string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return err
}
