// Package storage defines the mirror-vault file-system abstraction.
package storage

import "time"

// FileInfo is lightweight metadata for a mirrored file.
type FileInfo struct {
	Path     string
	Checksum string
	ModTime  time.Time
}

// Provider is the interface for mirror-vault file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the vault root).
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to the vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the vault root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the vault root).
	Delete(path string) error
}
