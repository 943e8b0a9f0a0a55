package db

import (
	"context"
	"strings"
)

// likeEscaper escapes LIKE wildcards so user input matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func prefixPattern(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

func (t *Tx) ids(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := t.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TaskIDsWithPrefix returns up to limit task ids starting with prefix
func (t *Tx) TaskIDsWithPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	return t.ids(ctx, `SELECT id FROM tasks WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT ?`,
		prefixPattern(prefix), limit)
}

// ProjectIDsWithPrefix returns up to limit project ids starting with prefix
func (t *Tx) ProjectIDsWithPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	return t.ids(ctx, `SELECT id FROM projects WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT ?`,
		prefixPattern(prefix), limit)
}

// ProjectIDsByName returns the ids of projects named name, ignoring case
func (t *Tx) ProjectIDsByName(ctx context.Context, name string) ([]string, error) {
	return t.ids(ctx, `SELECT id FROM projects WHERE LOWER(name) = LOWER(?) ORDER BY position`, name)
}
