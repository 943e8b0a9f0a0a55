package ordering

import (
	"context"
	"fmt"
)

// Scope is one ordering scope bound to an open storage transaction.
// Implementations read and write through that transaction so a failed
// operation rolls back every position write together with the primary
// mutation.
type Scope interface {
	// Key identifies the scope, e.g. "tasks/<project>/todo".
	Key() string
	// Slots returns every member of the scope in any order.
	Slots(ctx context.Context) ([]Slot, error)
	// SetPosition writes a new position for a member.
	SetPosition(ctx context.Context, id string, position int) error
}

func apply(ctx context.Context, s Scope, updates []Slot) error {
	for _, u := range updates {
		if err := s.SetPosition(ctx, u.ID, u.Position); err != nil {
			return fmt.Errorf("%s: set position of %s: %w", s.Key(), u.ID, err)
		}
	}
	return nil
}

// MoveWithin moves id from oldPos to newPos inside s. It returns the number
// of records written, which is |newPos-oldPos|+1, or 0 for a no-op.
func MoveWithin(ctx context.Context, s Scope, id string, oldPos, newPos int) (int, error) {
	slots, err := s.Slots(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: read scope: %w", s.Key(), err)
	}
	updates, err := PlanWithin(slots, id, oldPos, newPos)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.Key(), err)
	}
	if err := apply(ctx, s, updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}

// MoveAcross moves id from oldPos in src to target in dst. Siblings in src
// close the gap, siblings in dst open a slot, then place writes the moved
// record with its new scope and position. It returns the number of records
// written including the moved one.
func MoveAcross(ctx context.Context, src, dst Scope, id string, oldPos, target int, place func(ctx context.Context) error) (int, error) {
	srcSlots, err := src.Slots(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: read scope: %w", src.Key(), err)
	}
	dstSlots, err := dst.Slots(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: read scope: %w", dst.Key(), err)
	}

	srcUpdates, dstUpdates, err := PlanAcross(srcSlots, dstSlots, id, oldPos, target)
	if err != nil {
		return 0, fmt.Errorf("%s -> %s: %w", src.Key(), dst.Key(), err)
	}
	if err := apply(ctx, src, srcUpdates); err != nil {
		return 0, err
	}
	if err := apply(ctx, dst, dstUpdates); err != nil {
		return 0, err
	}
	if err := place(ctx); err != nil {
		return 0, fmt.Errorf("%s: place %s: %w", dst.Key(), id, err)
	}
	return len(srcUpdates) + len(dstUpdates) + 1, nil
}

// Append returns the position a new member of s takes: the current size.
// No sibling is touched.
func Append(ctx context.Context, s Scope) (int, error) {
	slots, err := s.Slots(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: read scope: %w", s.Key(), err)
	}
	pos, err := NextPosition(slots)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.Key(), err)
	}
	return pos, nil
}

// Remove deletes id (held at oldPos) through del and then shifts every later
// member down by one. It returns the number of siblings rewritten.
func Remove(ctx context.Context, s Scope, id string, oldPos int, del func(ctx context.Context) error) (int, error) {
	slots, err := s.Slots(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: read scope: %w", s.Key(), err)
	}
	updates, err := PlanRemove(slots, id, oldPos)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.Key(), err)
	}
	if err := del(ctx); err != nil {
		return 0, fmt.Errorf("%s: delete %s: %w", s.Key(), id, err)
	}
	if err := apply(ctx, s, updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}

// Renumber rewrites s so positions follow less and are dense again. It
// returns the number of records written.
func Renumber(ctx context.Context, s Scope, less func(a, b Slot) bool) (int, error) {
	slots, err := s.Slots(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: read scope: %w", s.Key(), err)
	}
	updates := PlanRenumber(slots, less)
	if err := apply(ctx, s, updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}
