// Package cachefile keeps the local copy of the articles API response.
package cachefile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/renovaverde/sitegen/internal/models"
	"github.com/renovaverde/sitegen/internal/utils"
	"github.com/spf13/afero"
)

var ErrNotArray = errors.New("articles payload is not a JSON array")

type File struct {
	fs   afero.Fs
	path string
}

func New(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

func (f *File) Path() string {
	return f.path
}

// Write stores an API body as an indented JSON array and returns the number
// of records. Nothing is written when body is not a JSON array.
func (f *File) Write(body []byte) (int, error) {
	count, err := CountRecords(body)
	if err != nil {
		return 0, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(body), "", "  "); err != nil {
		return 0, fmt.Errorf("failed to format articles: %w", err)
	}
	out.WriteByte('\n')

	if err := utils.WriteFileAtomic(f.fs, f.path, out.Bytes()); err != nil {
		return 0, err
	}

	return count, nil
}

// Load reads the cached articles in file order.
func (f *File) Load() ([]*models.Article, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	articles, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	return articles, nil
}

// ListPublishedArticles returns every cached record; the cache only ever
// holds the published=true listing.
func (f *File) ListPublishedArticles(ctx context.Context) ([]*models.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Load()
}

// CountRecords checks that body is a JSON array and counts its elements.
func CountRecords(body []byte) (int, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return 0, ErrNotArray
		}
		return 0, fmt.Errorf("invalid JSON: %w", err)
	}
	if records == nil {
		// literal null
		return 0, ErrNotArray
	}
	return len(records), nil
}

func Decode(data []byte) ([]*models.Article, error) {
	var articles []*models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
