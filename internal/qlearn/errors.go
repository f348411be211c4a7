package qlearn

import "errors"

var (
	// ErrSnapshotNotFound means the snapshot path does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotCorrupt means the snapshot file exists but could not be
	// decoded.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
)
