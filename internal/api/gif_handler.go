package api

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/logger"
	"alcyxob/fitness-catalog/internal/storage"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker/v2"
)

const (
	gifCacheControl = "public, max-age=86400"
	msgImageMissing = "IMAGE NOT FOUND"

	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

// ImageSource fetches animation assets from the catalog.
type ImageSource interface {
	FetchImage(ctx context.Context, id string, resolution int) (*catalog.Image, error)
}

// GifHandlerOptions configures NewGifHandler. Cache may be nil.
type GifHandlerOptions struct {
	Source          ImageSource
	Cache           storage.AssetCache
	Resolution      int
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Logger          *logger.Logger
}

// GifHandler re-serves catalog images so the API key stays on the server.
type GifHandler struct {
	source     ImageSource
	cache      storage.AssetCache
	resolution int
	breaker    *gobreaker.CircuitBreaker[*catalog.Image]
	log        *logger.Logger
}

// NewGifHandler creates a GifHandler.
func NewGifHandler(opts GifHandlerOptions) *GifHandler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	timeout := opts.BreakerTimeout
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}

	settings := gobreaker.Settings{
		Name:    "catalog-image",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// An unknown id is an answer and a caller hanging up is not the upstream's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, catalog.ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &GifHandler{
		source:     opts.Source,
		cache:      opts.Cache,
		resolution: opts.Resolution,
		breaker:    gobreaker.NewCircuitBreaker[*catalog.Image](settings),
		log:        log,
	}
}

// ServeExerciseGif godoc
// @Summary Exercise animation
// @Description Streams the catalog GIF for an exercise. Responds 404 for any upstream failure.
// @Tags Gifs
// @Produce image/gif
// @Param catalogId path string true "Catalog exercise ID"
// @Success 200 {file} binary
// @Failure 404 {object} gin.H "Image not found"
// @Router /api/gifs/exercise/{catalogId} [get]
func (h *GifHandler) ServeExerciseGif(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Cross-Origin-Resource-Policy", "cross-origin")

	id := strings.TrimSpace(c.Param("catalogId"))
	if id == "" {
		abortWithError(c, http.StatusNotFound, msgImageMissing)
		return
	}

	ctx := c.Request.Context()
	if ctx.Err() != nil {
		// Client went away; nobody reads the answer.
		abortWithError(c, http.StatusNotFound, msgImageMissing)
		return
	}

	key := storage.AssetKey(id, h.resolution)

	if h.cache != nil {
		asset, err := h.cache.Get(ctx, key)
		if err == nil {
			h.write(c, asset.ContentType, asset.Data)
			return
		}
		if !errors.Is(err, storage.ErrObjectNotFound) {
			h.log.Warn("Asset cache read failed", "catalogId", id, "error", err)
		}
	}

	img, err := h.breaker.Execute(func() (*catalog.Image, error) {
		return h.source.FetchImage(ctx, id, h.resolution)
	})
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) && !errors.Is(err, context.Canceled) {
			h.log.Warn("Image fetch failed", "catalogId", id, "error", err)
		}
		abortWithError(c, http.StatusNotFound, msgImageMissing)
		return
	}

	if h.cache != nil {
		if err := h.cache.Put(ctx, key, storage.Asset{ContentType: img.ContentType, Data: img.Data}); err != nil {
			h.log.Warn("Asset cache write failed", "catalogId", id, "error", err)
		}
	}
	h.write(c, img.ContentType, img.Data)
}

func (h *GifHandler) write(c *gin.Context, contentType string, data []byte) {
	if contentType == "" {
		contentType = "image/gif"
	}
	c.Header("Cache-Control", gifCacheControl)
	c.Data(http.StatusOK, contentType, data)
}
