package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"podsafe/internal/app"
	"podsafe/internal/models"
	"podsafe/internal/services"
	"podsafe/internal/store"
	"podsafe/internal/tasks"
	"podsafe/pkg/classifier"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const maxListLimit = 100

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

// DescriptionRequest is the body accepted by the keyword, check and session submit endpoints.
type DescriptionRequest struct {
	Description string `json:"description"`
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	if err := h.App.Store.Ping(c.Request.Context()); err != nil {
		Unavailable(c, "store unreachable: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// KeywordsHandler returns the keyword set of a description without classifying it.
func (h *APIHandler) KeywordsHandler(c *gin.Context) {
	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	kws, err := h.App.CheckService.Keywords(c.Request.Context(), services.CheckParams{Input: req.Description, Raw: true})
	if err != nil {
		Internal(c, fmt.Sprintf("KeywordsHandler: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"keywords": kws}})
}

// CheckHandler runs a synchronous check.
func (h *APIHandler) CheckHandler(c *gin.Context) {
	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	check, err := h.App.CheckService.Check(c.Request.Context(), services.CheckParams{Input: req.Description, Raw: true})
	if err != nil {
		respondCheckError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": check})
}

func respondCheckError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyInput):
		Unprocessable(c, "empty_input", services.MessageEmptyInput)
	case errors.Is(err, classifier.ErrRequestFailed):
		log.WithError(err).Warn("API check failed")
		BadGateway(c, "request_failed", services.MessageRequestFailed)
	default:
		Internal(c, fmt.Sprintf("check failed: %v", err))
	}
}

// CheckAsyncHandler queues a check for the worker.
func (h *APIHandler) CheckAsyncHandler(c *gin.Context) {
	if h.App.JobClient == nil {
		Unavailable(c, "async checks require redis.address to be configured")
		return
	}
	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		BadRequest(c, "description is required")
		return
	}

	info, err := h.App.JobClient.EnqueueCheck(c.Request.Context(), req.Description)
	if err != nil {
		Internal(c, fmt.Sprintf("CheckAsyncHandler: %v", err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"task_id": info.ID, "queue": tasks.QueueChecks}})
}

func (h *APIHandler) ListChecksHandler(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	checks, err := h.App.Store.ListChecks(c.Request.Context(), limit, offset)
	if err != nil {
		Internal(c, fmt.Sprintf("ListChecksHandler: failed to list checks: %v", err))
		return
	}
	if checks == nil {
		checks = []*models.Check{}
	}
	c.JSON(http.StatusOK, gin.H{"items": checks, "limit": limit, "offset": offset})
}

func (h *APIHandler) GetCheckHandler(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	check, err := h.App.Store.GetCheck(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Check not found with ID: %s", id))
		} else {
			Internal(c, fmt.Sprintf("GetCheckHandler: failed to retrieve check: %v", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": check})
}

func (h *APIHandler) GetJobHandler(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.App.Store.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Job not found with ID: %s", id))
		} else {
			Internal(c, fmt.Sprintf("GetJobHandler: failed to retrieve job: %v", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": job})
}

// parsePagination reads limit and offset query parameters.
func parsePagination(c *gin.Context) (int, int, error) {
	limit, offset := 20, 0
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return 0, 0, fmt.Errorf("invalid limit: %s", l)
		}
		limit = min(parsed, maxListLimit)
	}
	if o := c.Query("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("invalid offset: %s", o)
		}
		offset = parsed
	}
	return limit, offset, nil
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, fmt.Sprintf("invalid %s: %s", name, c.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}
