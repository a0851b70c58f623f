package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/renovaverde/sitegen/internal/models"
	"github.com/renovaverde/sitegen/internal/pagecache"
	"github.com/renovaverde/sitegen/internal/publish"
	"github.com/renovaverde/sitegen/internal/storage"
	"github.com/renovaverde/sitegen/internal/utils"
)

const (
	pageTTL      = time.Hour
	cacheControl = "public, max-age=3600, s-maxage=3600"

	sitemapKey = "sitemap.xml"
	robotsKey  = "robots.txt"
	feedKey    = "feed.xml"
)

// PageKeys are the page cache entries dropped whenever the documents change.
var PageKeys = []string{sitemapKey, robotsKey, feedKey}

type Publisher interface {
	Render(ctx context.Context) (*publish.Result, error)
	Refresh(ctx context.Context) (*publish.Result, error)
}

type Handler struct {
	publisher Publisher
	cache     pagecache.Cache
	store     storage.Store
	logger    *utils.RunLogger
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SitemapResponse struct {
	Success   bool   `json:"success"`
	Sitemap   string `json:"sitemap"`
	TotalURLs int    `json:"totalUrls"`
	Articles  int    `json:"articles"`
}

type WebhookRequest struct {
	Table string `json:"table"`
	Type  string `json:"type"`
}

type WebhookResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	TotalURLs int    `json:"totalUrls"`
	Articles  int    `json:"articles"`
	Operation string `json:"operation"`
}

// NewHandler builds the handler; cache defaults to an in-memory cache and
// store may be nil.
func NewHandler(publisher Publisher, cache pagecache.Cache, store storage.Store, logger *utils.RunLogger) *Handler {
	if cache == nil {
		cache = pagecache.NewMemoryCache()
	}
	return &Handler{
		publisher: publisher,
		cache:     cache,
		store:     store,
		logger:    logger,
	}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/sitemap.xml", h.ServeSitemap)
	router.GET("/robots.txt", h.ServeRobots)
	router.GET("/feed.xml", h.ServeFeed)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		api.POST("/sitemap", h.RenderSitemap)

		webhook := api.Group("/webhook")
		{
			webhook.GET("/sitemap", h.WebhookStatus)
			webhook.POST("/sitemap", h.SitemapWebhook)
		}

		api.POST("/cache/clear", h.ClearCache)
		api.GET("/runs", h.ListRuns)
	}
}

func (h *Handler) ServeSitemap(c *gin.Context) {
	h.servePage(c, sitemapKey, "application/xml; charset=utf-8")
}

func (h *Handler) ServeRobots(c *gin.Context) {
	h.servePage(c, robotsKey, "text/plain; charset=utf-8")
}

func (h *Handler) ServeFeed(c *gin.Context) {
	h.servePage(c, feedKey, "application/rss+xml; charset=utf-8")
}

func (h *Handler) servePage(c *gin.Context, key, contentType string) {
	ctx := c.Request.Context()

	body, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.LogWarn("Page cache read failed for %s: %v", key, err)
	}

	if !ok {
		result, err := h.publisher.Render(ctx)
		if err != nil {
			h.logger.LogError("Error generating %s: %v", key, err)
			c.String(http.StatusInternalServerError, "Error generating %s", key)
			return
		}
		h.storePages(ctx, result)
		body = pageFor(result, key)
	}

	if body == nil {
		c.String(http.StatusNotFound, "%s is not enabled", key)
		return
	}

	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, contentType, body)
}

func (h *Handler) RenderSitemap(c *gin.Context) {
	result, err := h.publisher.Render(c.Request.Context())
	if err != nil {
		h.logger.LogError("Error generating sitemap: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate sitemap", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SitemapResponse{
		Success:   true,
		Sitemap:   string(result.Sitemap),
		TotalURLs: result.URLs,
		Articles:  result.Articles,
	})
}

func (h *Handler) WebhookStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Sitemap webhook is active",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) SitemapWebhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook payload"})
		return
	}

	h.logger.LogInfo("Webhook received: table=%s type=%s", req.Table, req.Type)

	if req.Table != "articles" {
		c.JSON(http.StatusOK, gin.H{"message": "Not an articles operation"})
		return
	}

	// Refetch first; the article cache predates the change that fired the hook.
	ctx := c.Request.Context()
	result, err := h.publisher.Refresh(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update sitemap", Details: err.Error()})
		return
	}

	if _, err := h.cache.Delete(ctx, PageKeys...); err != nil {
		h.logger.LogWarn("Failed to clear page cache: %v", err)
	}

	operation := req.Type
	if operation == "" {
		operation = "unknown"
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Success:   true,
		Message:   "Sitemap updated successfully",
		TotalURLs: result.URLs,
		Articles:  result.Articles,
		Operation: operation,
	})
}

func (h *Handler) ClearCache(c *gin.Context) {
	deleted, err := h.cache.Delete(c.Request.Context(), PageKeys...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to clear cache", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"clearedKeys": deleted,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run history requires a database"})
		return
	}

	runs, err := h.store.ListRuns(c.Request.Context(), getLimitParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch runs"})
		return
	}

	if runs == nil {
		runs = []*models.Run{}
	}

	c.JSON(http.StatusOK, runs)
}

func (h *Handler) storePages(ctx context.Context, result *publish.Result) {
	for _, key := range PageKeys {
		page := pageFor(result, key)
		if page == nil {
			continue
		}
		if err := h.cache.Set(ctx, key, page, pageTTL); err != nil {
			h.logger.LogWarn("Page cache write failed for %s: %v", key, err)
		}
	}
}

func pageFor(result *publish.Result, key string) []byte {
	switch key {
	case sitemapKey:
		return result.Sitemap
	case robotsKey:
		return result.Robots
	case feedKey:
		return result.Feed
	}
	return nil
}

// Utility functions
func getLimitParam(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return limit
}
