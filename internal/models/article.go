package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingSlug      = errors.New("missing slug")
	ErrMissingUpdatedAt = errors.New("missing updatedAt")
)

// Validate reports whether the record carries the fields the sitemap needs.
func (a *Article) Validate() error {
	if a.Slug == "" {
		return ErrMissingSlug
	}
	if a.UpdatedAt == "" {
		return ErrMissingUpdatedAt
	}
	return nil
}

// LastModDate returns the date portion of UpdatedAt, everything before "T".
func (a *Article) LastModDate() string {
	date, _, _ := strings.Cut(a.UpdatedAt, "T")
	return date
}

// NewRun creates a running run with a generated UUID
func NewRun(kind RunKind) *Run {
	return &Run{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
}

// Finish marks the run completed, or errored when err is non-nil.
func (r *Run) Finish(err error) {
	now := time.Now()
	r.FinishedAt = &now
	if err != nil {
		r.Status = RunStatusError
		r.Error = err.Error()
		return
	}
	r.Status = RunStatusCompleted
}
