// Package ordering keeps the integer position field of ordered records
// dense within a scope. Every scope holds positions 0..n-1 with no gaps
// and no duplicates; the planners in this file compute the writes that
// preserve that across a move, an insert or a delete, and the functions
// in reindex.go apply them through a Scope bound to a transaction.
package ordering

import (
	"errors"
	"fmt"
	"sort"
)

// ErrPrecondition reports that the stored state of a scope disagrees with
// what the caller asked for: the item is not where the caller says it is,
// the target index is out of range, or the scope is not dense to begin
// with. It is a programming error, never corrected silently.
var ErrPrecondition = errors.New("ordering precondition violated")

// Slot is one member of a scope and its position.
type Slot struct {
	ID       string
	Position int
}

// sorted returns a copy of slots ordered by position
func sorted(slots []Slot) []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CheckDense verifies that slots hold exactly the positions 0..len-1.
func CheckDense(slots []Slot) error {
	for i, s := range sorted(slots) {
		if s.Position != i {
			return fmt.Errorf("%w: position %d held by %s, want %d", ErrPrecondition, s.Position, s.ID, i)
		}
	}
	return nil
}

func find(slots []Slot, id string) (Slot, bool) {
	for _, s := range slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

func checkHolds(slots []Slot, id string, position int) error {
	s, ok := find(slots, id)
	if !ok {
		return fmt.Errorf("%w: %s is not a member of the scope", ErrPrecondition, id)
	}
	if s.Position != position {
		return fmt.Errorf("%w: %s holds position %d, caller expected %d", ErrPrecondition, id, s.Position, position)
	}
	return nil
}

// PlanWithin computes the writes for moving id from oldPos to newPos inside
// one scope. The moved item is the last entry of the result. A move onto
// its own position yields no writes.
func PlanWithin(slots []Slot, id string, oldPos, newPos int) ([]Slot, error) {
	if err := CheckDense(slots); err != nil {
		return nil, err
	}
	if err := checkHolds(slots, id, oldPos); err != nil {
		return nil, err
	}
	if newPos < 0 || newPos >= len(slots) {
		return nil, fmt.Errorf("%w: target %d outside [0,%d)", ErrPrecondition, newPos, len(slots))
	}
	if newPos == oldPos {
		return nil, nil
	}

	var updates []Slot
	for _, s := range sorted(slots) {
		if s.ID == id {
			continue
		}
		switch {
		case newPos > oldPos && s.Position > oldPos && s.Position <= newPos:
			updates = append(updates, Slot{ID: s.ID, Position: s.Position - 1})
		case newPos < oldPos && s.Position >= newPos && s.Position < oldPos:
			updates = append(updates, Slot{ID: s.ID, Position: s.Position + 1})
		}
	}
	return append(updates, Slot{ID: id, Position: newPos}), nil
}

// PlanAcross computes the sibling writes for moving id out of src (where it
// holds oldPos) into dst at target. The caller writes the moved item itself
// since its scope changes. target may equal len(dst) to append.
func PlanAcross(src, dst []Slot, id string, oldPos, target int) (srcUpdates, dstUpdates []Slot, err error) {
	if err := CheckDense(src); err != nil {
		return nil, nil, fmt.Errorf("source: %w", err)
	}
	if err := CheckDense(dst); err != nil {
		return nil, nil, fmt.Errorf("target: %w", err)
	}
	if err := checkHolds(src, id, oldPos); err != nil {
		return nil, nil, err
	}
	if _, ok := find(dst, id); ok {
		return nil, nil, fmt.Errorf("%w: %s is already a member of the target scope", ErrPrecondition, id)
	}
	if target < 0 || target > len(dst) {
		return nil, nil, fmt.Errorf("%w: target %d outside [0,%d]", ErrPrecondition, target, len(dst))
	}

	for _, s := range sorted(src) {
		if s.Position > oldPos {
			srcUpdates = append(srcUpdates, Slot{ID: s.ID, Position: s.Position - 1})
		}
	}
	for _, s := range sorted(dst) {
		if s.Position >= target {
			dstUpdates = append(dstUpdates, Slot{ID: s.ID, Position: s.Position + 1})
		}
	}
	return srcUpdates, dstUpdates, nil
}

// PlanRemove computes the writes that close the gap left by deleting id
// from position oldPos.
func PlanRemove(slots []Slot, id string, oldPos int) ([]Slot, error) {
	if err := CheckDense(slots); err != nil {
		return nil, err
	}
	if err := checkHolds(slots, id, oldPos); err != nil {
		return nil, err
	}
	var updates []Slot
	for _, s := range sorted(slots) {
		if s.Position > oldPos {
			updates = append(updates, Slot{ID: s.ID, Position: s.Position - 1})
		}
	}
	return updates, nil
}

// NextPosition returns the position a new member appended to slots takes.
func NextPosition(slots []Slot) (int, error) {
	if err := CheckDense(slots); err != nil {
		return 0, err
	}
	return len(slots), nil
}

// Clamp bounds index to [0, size].
func Clamp(index, size int) int {
	if index < 0 {
		return 0
	}
	if index > size {
		return size
	}
	return index
}

// PlanRenumber assigns dense positions to slots in the order given by less
// and returns the writes for members whose position changes. It is the
// repair path for a scope that failed CheckDense.
func PlanRenumber(slots []Slot, less func(a, b Slot) bool) []Slot {
	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })

	var updates []Slot
	for i, s := range ordered {
		if s.Position != i {
			updates = append(updates, Slot{ID: s.ID, Position: i})
		}
	}
	return updates
}
