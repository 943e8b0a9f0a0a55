package board

import (
	"context"
	"strings"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/notify"
)

// AddImage attaches data to a task. Only the types in
// model.AllowedImageTypes up to model.MaxImageSize bytes are accepted.
// Images are unordered, so no scope is locked.
func (b *Board) AddImage(ctx context.Context, taskID, name, mimeType string, data []byte) (model.TaskImage, error) {
	name, err := requireText("name", name)
	if err != nil {
		return model.TaskImage{}, err
	}
	if mimeType, err = checkImage(mimeType, data); err != nil {
		logger.Warn("image rejected", logger.F("task", taskID), logger.F("mime", mimeType), logger.F("size", len(data)), logger.F("error", err))
		return model.TaskImage{}, err
	}

	var (
		img       model.TaskImage
		projectID string
	)
	err = b.db.Update(ctx, func(tx *db.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return notFound("task", taskID, err)
		}
		projectID = task.ProjectID
		img = model.TaskImage{
			ID:        b.newID(),
			TaskID:    taskID,
			Name:      name,
			MimeType:  mimeType,
			Size:      len(data),
			Digest:    model.Digest(data),
			Data:      data,
			CreatedAt: b.now(),
		}
		return tx.InsertImage(ctx, img)
	})
	logResult(err, "image added", logger.F("task", taskID), logger.F("image", img.ID), logger.F("size", len(data)))
	if err != nil {
		return model.TaskImage{}, err
	}

	b.publish(notify.ImageAdded, projectID, taskID, img.ID)
	return img, nil
}

// checkImage returns the media type of mimeType without parameters, or
// ErrInvalid when the type or size is not accepted.
func checkImage(mimeType string, data []byte) (string, error) {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return "", invalid("mime type is required")
	}
	if !model.ImageTypeAllowed(mimeType) {
		return mimeType, invalid("unsupported image type %q (allowed: %s)", mimeType, strings.Join(model.AllowedImageTypes, ", "))
	}
	if len(data) > model.MaxImageSize {
		return mimeType, invalid("image is %d bytes; the limit is %d MB", len(data), model.MaxImageSize>>20)
	}
	return mimeType, nil
}

// DeleteImage removes one image
func (b *Board) DeleteImage(ctx context.Context, imageID string) error {
	var img model.TaskImage
	var task model.Task
	err := b.db.Update(ctx, func(tx *db.Tx) error {
		var err error
		if img, err = tx.GetImage(ctx, imageID); err != nil {
			return notFound("image", imageID, err)
		}
		if task, err = tx.GetTask(ctx, img.TaskID); err != nil {
			return err
		}
		return tx.DeleteImage(ctx, imageID)
	})
	logResult(err, "image deleted", logger.F("image", imageID))
	if err != nil {
		return err
	}

	b.publish(notify.ImageDeleted, task.ProjectID, task.ID, imageID)
	return nil
}

// GetImage returns an image including its data
func (b *Board) GetImage(ctx context.Context, imageID string) (model.TaskImage, error) {
	var img model.TaskImage
	err := b.db.View(ctx, func(tx *db.Tx) error {
		var err error
		img, err = tx.GetImage(ctx, imageID)
		return notFound("image", imageID, err)
	})
	return img, err
}

// ListImages returns the images of a task without their data
func (b *Board) ListImages(ctx context.Context, taskID string) ([]model.TaskImage, error) {
	var images []model.TaskImage
	err := b.db.View(ctx, func(tx *db.Tx) error {
		if _, err := tx.GetTask(ctx, taskID); err != nil {
			return notFound("task", taskID, err)
		}
		var err error
		images, err = tx.ListImages(ctx, taskID)
		return err
	})
	return images, err
}

// CountImages returns how many images a task carries
func (b *Board) CountImages(ctx context.Context, taskID string) (int, error) {
	var n int
	err := b.db.View(ctx, func(tx *db.Tx) error {
		if _, err := tx.GetTask(ctx, taskID); err != nil {
			return notFound("task", taskID, err)
		}
		var err error
		n, err = tx.CountImages(ctx, taskID)
		return err
	})
	return n, err
}
