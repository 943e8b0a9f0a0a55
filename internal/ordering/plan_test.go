package ordering_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kissboard/internal/ordering"
)

func slots(ids ...string) []ordering.Slot {
	out := make([]ordering.Slot, len(ids))
	for i, id := range ids {
		out[i] = ordering.Slot{ID: id, Position: i}
	}
	return out
}

func Test_PlanWithin_Shifts_Siblings_Toward_Vacated_Slot(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		id       string
		from, to int
		want     []ordering.Slot
	}{
		{
			name: "MoveLater",
			id:   "A", from: 0, to: 2,
			want: []ordering.Slot{{ID: "B", Position: 0}, {ID: "C", Position: 1}, {ID: "A", Position: 2}},
		},
		{
			name: "MoveEarlier",
			id:   "D", from: 3, to: 1,
			want: []ordering.Slot{{ID: "B", Position: 2}, {ID: "C", Position: 3}, {ID: "D", Position: 1}},
		},
		{
			name: "AdjacentSwapDown",
			id:   "B", from: 1, to: 2,
			want: []ordering.Slot{{ID: "C", Position: 1}, {ID: "B", Position: 2}},
		},
		{
			name: "NoOp",
			id:   "C", from: 2, to: 2,
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ordering.PlanWithin(slots("A", "B", "C", "D"), tc.id, tc.from, tc.to)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("updates mismatch (-want +got):\n%s", diff)
			}

			if tc.from != tc.to {
				require.Len(t, got, abs(tc.to-tc.from)+1, "writes |new-old|+1 records")
			}
		})
	}
}

func Test_PlanWithin_Rejects_Stale_Or_Out_Of_Range_Input(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		scope    []ordering.Slot
		id       string
		from, to int
	}{
		{name: "WrongOldPosition", scope: slots("A", "B", "C"), id: "A", from: 1, to: 2},
		{name: "UnknownItem", scope: slots("A", "B"), id: "Z", from: 0, to: 1},
		{name: "TargetPastEnd", scope: slots("A", "B", "C"), id: "A", from: 0, to: 3},
		{name: "NegativeTarget", scope: slots("A", "B"), id: "B", from: 1, to: -1},
		{name: "GapInScope", scope: []ordering.Slot{{ID: "A", Position: 0}, {ID: "B", Position: 2}}, id: "A", from: 0, to: 1},
		{name: "DuplicateInScope", scope: []ordering.Slot{{ID: "A", Position: 0}, {ID: "B", Position: 0}}, id: "A", from: 0, to: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ordering.PlanWithin(tc.scope, tc.id, tc.from, tc.to)
			require.ErrorIs(t, err, ordering.ErrPrecondition)
		})
	}
}

func Test_PlanAcross_Closes_Source_Gap_And_Opens_Target_Slot(t *testing.T) {
	t.Parallel()

	src := slots("T", "U", "V")
	dst := slots("X", "Y")

	srcUpdates, dstUpdates, err := ordering.PlanAcross(src, dst, "U", 1, 1)
	require.NoError(t, err)

	if diff := cmp.Diff([]ordering.Slot{{ID: "V", Position: 1}}, srcUpdates); diff != "" {
		t.Fatalf("source updates (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ordering.Slot{{ID: "Y", Position: 2}}, dstUpdates); diff != "" {
		t.Fatalf("target updates (-want +got):\n%s", diff)
	}
}

func Test_PlanAcross_Into_Empty_Target(t *testing.T) {
	t.Parallel()

	srcUpdates, dstUpdates, err := ordering.PlanAcross(slots("T", "U"), nil, "T", 0, 0)
	require.NoError(t, err)
	require.Equal(t, []ordering.Slot{{ID: "U", Position: 0}}, srcUpdates)
	require.Empty(t, dstUpdates)
}

func Test_PlanAcross_Rejects_Target_Beyond_Append_Slot(t *testing.T) {
	t.Parallel()

	_, _, err := ordering.PlanAcross(slots("T"), slots("X"), "T", 0, 2)
	require.ErrorIs(t, err, ordering.ErrPrecondition)

	_, _, err = ordering.PlanAcross(slots("T"), slots("T"), "T", 0, 0)
	require.ErrorIs(t, err, ordering.ErrPrecondition, "item already in target")
}

func Test_PlanRemove_Decrements_Later_Members(t *testing.T) {
	t.Parallel()

	got, err := ordering.PlanRemove(slots("P1", "P2", "P3", "P4"), "P2", 1)
	require.NoError(t, err)

	want := []ordering.Slot{{ID: "P3", Position: 1}, {ID: "P4", Position: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("updates (-want +got):\n%s", diff)
	}

	got, err = ordering.PlanRemove(slots("P1", "P2"), "P2", 1)
	require.NoError(t, err)
	require.Empty(t, got, "removing the last member shifts nothing")
}

func Test_NextPosition_Is_Scope_Size(t *testing.T) {
	t.Parallel()

	pos, err := ordering.NextPosition(nil)
	require.NoError(t, err)
	require.Equal(t, 0, pos)

	pos, err = ordering.NextPosition(slots("A", "B", "C"))
	require.NoError(t, err)
	require.Equal(t, 3, pos)

	_, err = ordering.NextPosition([]ordering.Slot{{ID: "A", Position: 1}})
	require.ErrorIs(t, err, ordering.ErrPrecondition)
}

func Test_Clamp(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, ordering.Clamp(-4, 3))
	require.Equal(t, 2, ordering.Clamp(2, 3))
	require.Equal(t, 3, ordering.Clamp(9, 3))
	require.Equal(t, 0, ordering.Clamp(5, 0))
}

func Test_PlanRenumber_Produces_Dense_Order(t *testing.T) {
	t.Parallel()

	broken := []ordering.Slot{
		{ID: "a", Position: 4},
		{ID: "b", Position: 1},
		{ID: "c", Position: 1},
		{ID: "d", Position: 9},
	}
	byPosThenID := func(x, y ordering.Slot) bool {
		if x.Position != y.Position {
			return x.Position < y.Position
		}
		return x.ID < y.ID
	}

	updates := ordering.PlanRenumber(broken, byPosThenID)

	want := []ordering.Slot{
		{ID: "b", Position: 0},
		{ID: "a", Position: 2},
		{ID: "d", Position: 3},
	}
	if diff := cmp.Diff(want, updates); diff != "" {
		t.Fatalf("renumber (-want +got):\n%s", diff)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
