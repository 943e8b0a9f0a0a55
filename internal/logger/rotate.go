package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rotatingFile is a zap sink that rolls the log file over by size and age,
// keeping MaxBackups numbered copies (file.1 is the newest).
type rotatingFile struct {
	config Config
	mu     sync.Mutex
	file   *os.File
	size   int64
}

func openRotating(config Config) (*rotatingFile, error) {
	logDir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &rotatingFile{config: config}
	if err := r.open(); err != nil {
		return nil, err
	}

	// Check if rotation is needed
	if err := r.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *rotatingFile) open() error {
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	r.file = file
	r.size = info.Size()
	return nil
}

// rotateIfNeeded checks if log rotation is needed and performs it
func (r *rotatingFile) rotateIfNeeded() error {
	if r.file == nil {
		return nil
	}

	if r.config.MaxSize > 0 && r.size >= r.config.MaxSize {
		return r.rotate()
	}

	if r.config.MaxAge > 0 {
		info, err := r.file.Stat()
		if err != nil {
			return err
		}
		if r.size > 0 && time.Since(info.ModTime()) > time.Duration(r.config.MaxAge)*24*time.Hour {
			return r.rotate()
		}
	}

	return nil
}

// rotate performs log rotation
func (r *rotatingFile) rotate() error {
	if r.file != nil {
		_ = r.file.Close()
	}

	// Rotate existing backups
	for i := r.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.config.FilePath, i)
		newPath := fmt.Sprintf("%s.%d", r.config.FilePath, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	// Move current log to .1
	if _, err := os.Stat(r.config.FilePath); err == nil {
		backupPath := fmt.Sprintf("%s.1", r.config.FilePath)
		if err := os.Rename(r.config.FilePath, backupPath); err != nil {
			return err
		}
	}

	return r.open()
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rotateIfNeeded(); err != nil {
		return 0, err
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Sync()
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
