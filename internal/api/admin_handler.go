package api

import (
	"alcyxob/fitness-catalog/internal/logger"
	"alcyxob/fitness-catalog/internal/service"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PassRunner runs import and reconciliation passes.
type PassRunner interface {
	Import(ctx context.Context, limit int) (service.Summary, error)
	Reconcile(ctx context.Context, opts service.Options) (service.Summary, error)
}

// AdminHandler lets an operator trigger passes without shell access.
type AdminHandler struct {
	runner       PassRunner
	defaultLimit int
	log          *logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(runner PassRunner, defaultLimit int, log *logger.Logger) *AdminHandler {
	return &AdminHandler{runner: runner, defaultLimit: defaultLimit, log: log}
}

// ImportRequest defines the optional JSON body for an import.
// An absent limit uses catalog.import_limit; 0 fetches the whole catalog.
type ImportRequest struct {
	Limit *int `json:"limit" binding:"omitempty,min=0"`
}

// RunImport godoc
// @Summary Import catalog exercises
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ImportRequest false "Import options"
// @Success 200 {object} service.Summary
// @Failure 409 {object} gin.H "A pass is already running"
// @Router /admin/import [post]
func (h *AdminHandler) RunImport(c *gin.Context) {
	var req ImportRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	limit := h.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	summary, err := h.runner.Import(context.WithoutCancel(c.Request.Context()), limit)
	h.respond(c, summary, err)
}

// RunReconcile godoc
// @Summary Repair stored exercises against the catalog
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.Options true "Repairs to perform"
// @Success 200 {object} service.Summary
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "A pass is already running"
// @Router /admin/reconcile [post]
func (h *AdminHandler) RunReconcile(c *gin.Context) {
	var opts service.Options
	if !bindOptionalJSON(c, &opts) {
		return
	}
	if !opts.RepairGif && !opts.RepairFields && !opts.ResolveMissingIDs {
		abortWithError(c, http.StatusBadRequest, "at least one of repairGif, repairFields, resolveMissingIds must be set")
		return
	}

	summary, err := h.runner.Reconcile(context.WithoutCancel(c.Request.Context()), opts)
	h.respond(c, summary, err)
}

func (h *AdminHandler) respond(c *gin.Context, summary service.Summary, err error) {
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		h.log.Error("Admin pass failed", "error", err, "runId", summary.RunID)
		abortWithError(c, http.StatusInternalServerError, "Pass failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, summary)
}

// bindOptionalJSON accepts an empty body as the zero value.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}
