package apihandlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"podsafe/internal/models"
	"podsafe/internal/services"

	"github.com/gin-gonic/gin"
)

// maxSessionWait bounds GET /sessions/:id?wait=true beyond the classifier timeout.
const maxSessionWait = 5 * time.Second

func (h *APIHandler) CreateSessionHandler(c *gin.Context) {
	sess := h.App.Sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"session_id": sess.ID, "state": sess.State()}})
}

func (h *APIHandler) SubmitSessionHandler(c *gin.Context) {
	sess, ok := h.lookupSession(c)
	if !ok {
		return
	}
	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	st, err := sess.Submit(req.Description)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			BadRequest(c, "description is required")
			return
		}
		Conflict(c, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"session_id": sess.ID, "state": st}})
}

// GetSessionHandler returns the session state; with wait=true it blocks until
// the latest submission settles.
func (h *APIHandler) GetSessionHandler(c *gin.Context) {
	sess, ok := h.lookupSession(c)
	if !ok {
		return
	}

	st := sess.State()
	if c.Query("wait") == "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.App.Config.Classifier.Timeout+maxSessionWait)
		defer cancel()
		st, _ = sess.Wait(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"session_id": sess.ID, "state": st}})
}

func (h *APIHandler) DeleteSessionHandler(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if !h.App.Sessions.Remove(id) {
		NotFound(c, "Session not found with ID: "+id.String())
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) lookupSession(c *gin.Context) (*services.Session, bool) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil, false
	}
	sess, found := h.App.Sessions.Get(id)
	if !found {
		NotFound(c, "Session not found with ID: "+id.String())
		return nil, false
	}
	return sess, true
}
