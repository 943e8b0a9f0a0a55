package board

import (
	"context"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/ordering"
)

// ProjectsKey is the lock and scope key of the project list
const ProjectsKey = "projects"

// ColumnKey is the lock and scope key of one task column
func ColumnKey(projectID string, status model.Status) string {
	return "tasks/" + projectID + "/" + string(status)
}

// projectKeys returns every column key of a project
func projectKeys(projectID string) []string {
	keys := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		keys = append(keys, ColumnKey(projectID, s))
	}
	return keys
}

// columnScope is one (project, status) column bound to a transaction
type columnScope struct {
	tx        *db.Tx
	projectID string
	status    model.Status
}

var _ ordering.Scope = columnScope{}

func (s columnScope) Key() string {
	return ColumnKey(s.projectID, s.status)
}

func (s columnScope) Slots(ctx context.Context) ([]ordering.Slot, error) {
	return s.tx.ColumnSlots(ctx, s.projectID, s.status)
}

func (s columnScope) SetPosition(ctx context.Context, id string, position int) error {
	return s.tx.SetTaskPosition(ctx, id, position)
}

// projectScope is the global project list bound to a transaction
type projectScope struct {
	tx *db.Tx
}

var _ ordering.Scope = projectScope{}

func (s projectScope) Key() string {
	return ProjectsKey
}

func (s projectScope) Slots(ctx context.Context) ([]ordering.Slot, error) {
	return s.tx.ProjectSlots(ctx)
}

func (s projectScope) SetPosition(ctx context.Context, id string, position int) error {
	return s.tx.SetProjectPosition(ctx, id, position)
}
