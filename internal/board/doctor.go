package board

import (
	"context"
	"errors"
	"time"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/notify"
	"github.com/existflow/kissboard/internal/ordering"
)

// Violation is a scope whose positions are not 0..n-1
type Violation struct {
	Scope  string `json:"scope"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return v.Scope + ": " + v.Detail
}

// scopes returns every ordering scope bound to tx: the project list first,
// then each column of each project
func scopes(ctx context.Context, tx *db.Tx) ([]ordering.Scope, error) {
	projects, err := tx.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := []ordering.Scope{projectScope{tx: tx}}
	for _, p := range projects {
		for _, s := range model.Statuses {
			out = append(out, columnScope{tx: tx, projectID: p.ID, status: s})
		}
	}
	return out, nil
}

// Verify checks the dense position invariant of every scope and returns
// the scopes that break it.
func (b *Board) Verify(ctx context.Context) ([]Violation, error) {
	var violations []Violation
	err := b.db.View(ctx, func(tx *db.Tx) error {
		all, err := scopes(ctx, tx)
		if err != nil {
			return err
		}
		for _, s := range all {
			slots, err := s.Slots(ctx)
			if err != nil {
				return err
			}
			if err := ordering.CheckDense(slots); err != nil {
				violations = append(violations, Violation{Scope: s.Key(), Detail: detail(err)})
			}
		}
		return nil
	})
	return violations, err
}

func detail(err error) string {
	msg := err.Error()
	prefix := ordering.ErrPrecondition.Error() + ": "
	if errors.Is(err, ordering.ErrPrecondition) && len(msg) > len(prefix) {
		return msg[len(prefix):]
	}
	return msg
}

// Repair renumbers every scope so positions are dense again, keeping the
// stored order and breaking ties by creation time, then id. It returns the
// number of records rewritten; a board that verifies clean rewrites none.
func (b *Board) Repair(ctx context.Context) (int, error) {
	var keys []string
	err := b.db.View(ctx, func(tx *db.Tx) error {
		all, err := scopes(ctx, tx)
		for _, s := range all {
			keys = append(keys, s.Key())
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	unlock := b.locks.Lock(keys...)
	defer unlock()

	var written int
	err = b.db.Update(ctx, func(tx *db.Tx) error {
		projects, err := tx.ListProjects(ctx)
		if err != nil {
			return err
		}
		created := make(map[string]time.Time, len(projects))
		for _, p := range projects {
			created[p.ID] = p.CreatedAt
		}
		n, err := ordering.Renumber(ctx, projectScope{tx: tx}, byPosition(created))
		if err != nil {
			return err
		}
		written += n

		for _, p := range projects {
			tasks, err := tx.ListTasks(ctx, p.ID)
			if err != nil {
				return err
			}
			created := make(map[string]time.Time, len(tasks))
			for _, t := range tasks {
				created[t.ID] = t.CreatedAt
			}
			for _, s := range model.Statuses {
				n, err := ordering.Renumber(ctx, columnScope{tx: tx, projectID: p.ID, status: s}, byPosition(created))
				if err != nil {
					return err
				}
				written += n
			}
		}
		return nil
	})
	logResult(err, "board repaired", logger.F("written", written))
	if err != nil {
		return 0, err
	}

	if written > 0 {
		b.publish(notify.BoardRepaired, "", "", "")
	}
	return written, nil
}

func byPosition(created map[string]time.Time) func(a, b ordering.Slot) bool {
	return func(a, b ordering.Slot) bool {
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		ca, cb := created[a.ID], created[b.ID]
		if !ca.Equal(cb) {
			return ca.Before(cb)
		}
		return a.ID < b.ID
	}
}
