package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/renovaverde/sitegen/config"
	"github.com/renovaverde/sitegen/internal/models"
)

const dateLayout = "2006-01-02"

const (
	articleChangeFreq  = "weekly"
	articlePriority    = "0.8"
	categoryChangeFreq = "weekly"
	categoryPriority   = "0.6"
)

var ErrInvalidArticle = errors.New("invalid article record")

// DefaultStaticPages are the fixed top-level pages of the site.
var DefaultStaticPages = []config.Page{
	{Path: "", ChangeFreq: "daily", Priority: "1.0"},
	{Path: "/sobre", ChangeFreq: "monthly", Priority: "0.8"},
	{Path: "/contato", ChangeFreq: "monthly", Priority: "0.7"},
	{Path: "/politica-privacidade", ChangeFreq: "yearly", Priority: "0.3"},
	{Path: "/termos-uso", ChangeFreq: "yearly", Priority: "0.3"},
	{Path: "/artigos", ChangeFreq: "daily", Priority: "0.9"},
	{Path: "/search", ChangeFreq: "monthly", Priority: "0.6"},
}

var DefaultCategories = []string{
	"jardinagem",
	"energia-renovavel",
	"reformas-ecologicas",
	"reciclagem",
	"economia-domestica",
	"compostagem",
	"sustentabilidade",
}

type Builder struct {
	baseURL     string
	staticPages []config.Page
	categories  []string
	now         func() time.Time
}

type BuilderConfig struct {
	BaseURL     string
	StaticPages []config.Page
	Categories  []string
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewBuilder(cfg BuilderConfig) *Builder {
	b := &Builder{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		staticPages: cfg.StaticPages,
		categories:  cfg.Categories,
		now:         cfg.Now,
	}
	if len(b.staticPages) == 0 {
		b.staticPages = DefaultStaticPages
	}
	if len(b.categories) == 0 {
		b.categories = DefaultCategories
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

func (b *Builder) BaseURL() string {
	return b.baseURL
}

// ArticleURL is the public address of an article.
func (b *Builder) ArticleURL(slug string) string {
	return b.baseURL + "/artigos/" + slug
}

func (b *Builder) CategoryURL(name string) string {
	return b.baseURL + "/categoria/" + name
}

// Build assembles static pages, then articles in input order, then categories.
// A record without slug or updatedAt fails the whole build.
func (b *Builder) Build(articles []*models.Article) (*models.URLSet, error) {
	today := b.now().UTC().Format(dateLayout)

	set := &models.URLSet{
		Xmlns: models.SitemapNamespace,
		URLs:  make([]models.URL, 0, len(b.staticPages)+len(articles)+len(b.categories)),
	}

	for _, page := range b.staticPages {
		set.URLs = append(set.URLs, models.URL{
			Loc:        b.baseURL + page.Path,
			LastMod:    today,
			ChangeFreq: page.ChangeFreq,
			Priority:   page.Priority,
		})
	}

	for i, article := range articles {
		if article == nil {
			return nil, fmt.Errorf("%w at index %d: null record", ErrInvalidArticle, i)
		}
		if err := article.Validate(); err != nil {
			return nil, fmt.Errorf("%w at index %d: %v", ErrInvalidArticle, i, err)
		}
		set.URLs = append(set.URLs, models.URL{
			Loc:        b.ArticleURL(article.Slug),
			LastMod:    article.LastModDate(),
			ChangeFreq: articleChangeFreq,
			Priority:   articlePriority,
		})
	}

	for _, category := range b.categories {
		set.URLs = append(set.URLs, models.URL{
			Loc:        b.CategoryURL(category),
			LastMod:    today,
			ChangeFreq: categoryChangeFreq,
			Priority:   categoryPriority,
		})
	}

	return set, nil
}

// Encode writes the document with an XML declaration and two-space indent.
func Encode(w io.Writer, set *models.URLSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

func Marshal(set *models.URLSet) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render builds and encodes the sitemap for articles.
func (b *Builder) Render(articles []*models.Article) ([]byte, *models.URLSet, error) {
	set, err := b.Build(articles)
	if err != nil {
		return nil, nil, err
	}
	data, err := Marshal(set)
	if err != nil {
		return nil, nil, err
	}
	return data, set, nil
}
