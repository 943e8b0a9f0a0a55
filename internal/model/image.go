package model

import (
	"encoding/hex"
	"slices"
	"time"

	"golang.org/x/crypto/blake2b"
)

// TaskImage is a binary attachment owned by a task. Images are unordered.
type TaskImage struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	Size      int       `json:"size"`
	Digest    string    `json:"digest"` // hex blake2b-256 of Data
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxImageSize is the largest image accepted, in bytes
const MaxImageSize = 5 << 20

// AllowedImageTypes lists the MIME types an image may have
var AllowedImageTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/gif", "image/webp"}

// ImageTypeAllowed reports whether mimeType is one of AllowedImageTypes
func ImageTypeAllowed(mimeType string) bool {
	return slices.Contains(AllowedImageTypes, mimeType)
}

// Digest returns the hex blake2b-256 sum of data
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
