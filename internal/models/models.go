package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is a record of the articles API. Only Slug and UpdatedAt are
// needed for the sitemap; the rest is carried for the feed and the store.
type Article struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	Slug        string `json:"slug"`
	Category    string `json:"category,omitempty"`
	IsPublished bool   `json:"isPublished,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt"`
}

type RunKind string

const (
	RunFetch   RunKind = "fetch"
	RunSitemap RunKind = "sitemap"
	RunRefresh RunKind = "refresh"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusError     = "error"
)

type Run struct {
	ID         uuid.UUID  `json:"id"`
	Kind       RunKind    `json:"kind"`
	Status     string     `json:"status"`
	Articles   int        `json:"articles"`
	URLs       int        `json:"urls"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
