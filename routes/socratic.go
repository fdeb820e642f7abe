package routes

import (
	"errors"
	"net/http"

	"lexhub/models"
	"lexhub/services"

	"github.com/gin-gonic/gin"
)

// Sessions is the engine entry point shared by all handlers; wired in main.
var Sessions *services.SessionService

// Catalog is the loaded case content used by the listing handlers.
var Catalog *models.CaseContent

// CreateSessionHandler starts a Socratic session over one issue.
func CreateSessionHandler(c *gin.Context) {
	var req struct {
		IssueID  string `json:"issueId" binding:"required"`
		Hardness string `json:"hardness"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	session, err := Sessions.CreateSession(req.IssueID, req.Hardness)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitTurnHandler validates and scores one argument submission.
func SubmitTurnHandler(c *gin.Context) {
	sessionID := c.Param("id")

	var req struct {
		models.Turn
		TurnIndex *int `json:"turnIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	turnIndex := -1
	if req.TurnIndex != nil {
		turnIndex = *req.TurnIndex
	}

	score, challenge, err := Sessions.SubmitTurn(c.Request.Context(), sessionID, &req.Turn, turnIndex)
	if err != nil {
		var vErr *services.ValidationError
		var sErr *services.StateConflictError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid turn", "violations": vErr.Violations})
		case errors.As(err, &sErr):
			c.JSON(http.StatusConflict, gin.H{"error": sErr.Reason})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"score":     score,
		"challenge": challenge,
	})
}

// PauseSessionHandler suspends a session.
func PauseSessionHandler(c *gin.Context) {
	transitionHandler(c, Sessions.Pause)
}

// ResumeSessionHandler reactivates a paused session.
func ResumeSessionHandler(c *gin.Context) {
	transitionHandler(c, Sessions.Resume)
}

func transitionHandler(c *gin.Context, transition func(string) error) {
	if err := transition(c.Param("id")); err != nil {
		var sErr *services.StateConflictError
		if errors.As(err, &sErr) {
			c.JSON(http.StatusConflict, gin.H{"error": sErr.Reason})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EndSessionHandler terminates a session with an end reason.
func EndSessionHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional; an empty reason means a normal completion.
	c.ShouldBindJSON(&req)

	if err := Sessions.EndSession(c.Param("id"), req.Reason); err != nil {
		var sErr *services.StateConflictError
		if errors.As(err, &sErr) {
			c.JSON(http.StatusConflict, gin.H{"error": sErr.Reason})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetSessionHandler returns the full session aggregate.
func GetSessionHandler(c *gin.Context) {
	session, err := Sessions.Snapshot(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListIssuesHandler returns the issue catalog.
func ListIssuesHandler(c *gin.Context) {
	issues := make([]*models.Issue, 0, len(Catalog.Issues))
	for _, issue := range Catalog.Issues {
		issues = append(issues, issue)
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// SetupSocraticRoutes registers the session lifecycle routes.
func SetupSocraticRoutes(rg *gin.RouterGroup) {
	rg.GET("/socratic/issues", ListIssuesHandler)
	rg.POST("/socratic/session", CreateSessionHandler)
	rg.GET("/socratic/session/:id", GetSessionHandler)
	rg.POST("/socratic/session/:id/turn", SubmitTurnHandler)
	rg.POST("/socratic/session/:id/pause", PauseSessionHandler)
	rg.POST("/socratic/session/:id/resume", ResumeSessionHandler)
	rg.POST("/socratic/session/:id/end", EndSessionHandler)
}
