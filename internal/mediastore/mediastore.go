// Package mediastore persists synthesized audio. Files go to object storage
// when it is configured and reachable, otherwise to a local directory served
// by the HTTP layer.
package mediastore

import (
	"errors"
	"fmt"
	"strings"
)

// Tier identifies where an object was stored.
type Tier string

const (
	TierRemote Tier = "remote"
	TierLocal  Tier = "local"
)

// Object is a stored audio file.
type Object struct {
	Name string
	URL  string
	Tier Tier
}

var ErrInvalidName = errors.New("invalid object name")

// StorageError is returned when no tier accepted the file. RemoteErr is nil
// when the remote tier is disabled.
type StorageError struct {
	Name      string
	RemoteErr error
	LocalErr  error
}

func (e *StorageError) Error() string {
	if e.RemoteErr == nil {
		return fmt.Sprintf("store %s: local: %v", e.Name, e.LocalErr)
	}
	return fmt.Sprintf("store %s: remote: %v; local: %v", e.Name, e.RemoteErr, e.LocalErr)
}

func (e *StorageError) Unwrap() []error {
	var errs []error
	if e.RemoteErr != nil {
		errs = append(errs, e.RemoteErr)
	}
	if e.LocalErr != nil {
		errs = append(errs, e.LocalErr)
	}
	return errs
}

// ValidName reports whether name is a single path element safe to use as a
// file name and object key suffix.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
