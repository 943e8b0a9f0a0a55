package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/existflow/kissboard/internal/model"
)

const imageColumns = `id, task_id, name, mime_type, size, digest, created_at`

func scanImage(row scanner, withData bool) (model.TaskImage, error) {
	var img model.TaskImage
	var created string
	dest := []any{&img.ID, &img.TaskID, &img.Name, &img.MimeType, &img.Size, &img.Digest, &created}
	if withData {
		dest = append(dest, &img.Data)
	}
	if err := row.Scan(dest...); err != nil {
		return model.TaskImage{}, err
	}
	var err error
	if img.CreatedAt, err = parseTime(created); err != nil {
		return model.TaskImage{}, err
	}
	return img, nil
}

// InsertImage stores a new image
func (t *Tx) InsertImage(ctx context.Context, img model.TaskImage) error {
	_, err := t.exec(ctx, `
		INSERT INTO images (id, task_id, name, mime_type, size, digest, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, img.ID, img.TaskID, img.Name, img.MimeType, img.Size, img.Digest, img.Data, formatTime(img.CreatedAt))
	return err
}

// GetImage retrieves an image including its data
func (t *Tx) GetImage(ctx context.Context, id string) (model.TaskImage, error) {
	img, err := scanImage(t.queryRow(ctx, `SELECT `+imageColumns+`, data FROM images WHERE id = ?`, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaskImage{}, ErrNotFound
	}
	return img, err
}

// ListImages returns the images of a task without their data, oldest first
func (t *Tx) ListImages(ctx context.Context, taskID string) ([]model.TaskImage, error) {
	rows, err := t.query(ctx, `SELECT `+imageColumns+` FROM images WHERE task_id = ? ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []model.TaskImage
	for rows.Next() {
		img, err := scanImage(rows, false)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// CountImages returns the number of images attached to a task
func (t *Tx) CountImages(ctx context.Context, taskID string) (int, error) {
	return t.count(ctx, `SELECT COUNT(*) FROM images WHERE task_id = ?`, taskID)
}

// DeleteImage deletes one image
func (t *Tx) DeleteImage(ctx context.Context, id string) error {
	return t.execOne(ctx, `DELETE FROM images WHERE id = ?`, id)
}

// DeleteTaskImages deletes every image of a task
func (t *Tx) DeleteTaskImages(ctx context.Context, taskID string) (int, error) {
	res, err := t.exec(ctx, `DELETE FROM images WHERE task_id = ?`, taskID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// DeleteProjectImages deletes every image of every task in a project
func (t *Tx) DeleteProjectImages(ctx context.Context, projectID string) (int, error) {
	res, err := t.exec(ctx, `DELETE FROM images WHERE task_id IN (SELECT id FROM tasks WHERE project_id = ?)`, projectID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
