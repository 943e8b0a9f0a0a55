package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/kissboard/internal/notify"
)

func Test_Publish_Assigns_Increasing_Revisions(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	a := hub.Publish(notify.Change{Kind: notify.TaskCreated, TaskID: "t1"})
	b := hub.Publish(notify.Change{Kind: notify.TaskMoved, TaskID: "t1"})

	require.Equal(t, uint64(1), a.Revision)
	require.Equal(t, uint64(2), b.Revision)
	require.Equal(t, uint64(2), hub.Revision())
	require.False(t, b.At.IsZero())
}

func Test_Subscribe_Receives_Until_Cancelled(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	ch, cancel := hub.Subscribe(4)

	hub.Publish(notify.Change{Kind: notify.ProjectCreated, ProjectID: "p1"})
	got := <-ch
	require.Equal(t, notify.ProjectCreated, got.Kind)

	cancel()
	cancel()
	_, open := <-ch
	require.False(t, open)

	hub.Publish(notify.Change{Kind: notify.ProjectDeleted})
}

func Test_Since_Reports_Truncated_History(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	for i := 0; i < 300; i++ {
		hub.Publish(notify.Change{Kind: notify.TaskUpdated})
	}

	changes, complete := hub.Since(295)
	require.True(t, complete)
	require.Len(t, changes, 5)
	require.Equal(t, uint64(296), changes[0].Revision)

	_, complete = hub.Since(3)
	require.False(t, complete, "revision 4 fell out of history")

	changes, complete = hub.Since(300)
	require.True(t, complete)
	require.Empty(t, changes)
}

func Test_Wait_Returns_On_Publish(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	done := make(chan uint64)

	go func() {
		rev, err := hub.Wait(context.Background(), 0)
		if err == nil {
			done <- rev
		}
	}()

	time.Sleep(10 * time.Millisecond)
	hub.Publish(notify.Change{Kind: notify.TaskCreated})

	select {
	case rev := <-done:
		require.Equal(t, uint64(1), rev)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after publish")
	}
}

func Test_Wait_Honours_Context(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rev, err := hub.Wait(ctx, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Zero(t, rev)
}
