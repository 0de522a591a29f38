package ui

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pricedash/domain/core"
	"pricedash/internal/errors"
	"pricedash/internal/export"
)

// handleIndex serves the session's current document, creating the session
// on first visit.
func (s *Server) handleIndex(c *gin.Context) {
	id, _ := c.Cookie(SessionCookie)
	sess, created, err := s.sessions.GetOrCreate(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("[Index] Failed to create session: %v", err)
		s.renderTemplate(c, http.StatusInternalServerError, "error.html", gin.H{"Title": AppTitle, "Message": errors.UserMessage(err)})
		return
	}
	if created || id != sess.ID {
		setSessionCookie(c, sess.ID)
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(sess.Page()))
}

func (s *Server) handleEvents(c *gin.Context) {
	s.hub.HandleSSE(c, currentSession(c).ID)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"streams":  len(s.hub.GetActiveSessions()),
	})
}

func (s *Server) handleBoot(c *gin.Context) {
	currentSession(c).Router.Bootstrap(c.PostForm("fragment"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePop(c *gin.Context) {
	view := strings.TrimPrefix(c.PostForm("view"), "#")
	currentSession(c).Doc.History().Traverse(view)
	c.Status(http.StatusNoContent)
}

// handleNavigate follows a link click. Unknown views are ignored.
func (s *Server) handleNavigate(c *gin.Context) {
	if !currentSession(c).Router.Navigate(c.Param("view"), true) {
		s.logger.Debug("[Nav] Ignored navigation to %q", c.Param("view"))
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStep(c *gin.Context) {
	sess := currentSession(c)
	sess.Form.Sync(postedFields(c))

	direction := 1
	if c.PostForm("direction") == "prev" {
		direction = -1
	}
	step := sess.Form.Advance(direction)
	c.JSON(http.StatusOK, gin.H{"step": step, "total": sess.Form.TotalSteps()})
}

func (s *Server) handleSubmit(c *gin.Context) {
	sess := currentSession(c)
	sess.Form.Sync(postedFields(c))

	price, err := sess.Form.Submit(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": errors.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"predicted_price": price})
}

func (s *Server) handleReset(c *gin.Context) {
	currentSession(c).Form.Reset()
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePrefill(c *gin.Context) {
	sess := currentSession(c)
	sess.Form.Sync(postedFields(c))

	fields, err := sess.Form.Prefill(c.Request.Context(), c.PostForm("description"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": errors.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

func (s *Server) handlePredictIn(c *gin.Context) {
	sess := currentSession(c)
	neighborhood := c.PostForm("neighborhood")
	if neighborhood == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "neighborhood is required"})
		return
	}
	if sess.Router.Current() == sess.Views.Predict.ID() {
		sess.Form.Sync(postedFields(c))
	}
	sess.PredictIn(neighborhood)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleThemeToggle(c *gin.Context) {
	next, err := currentSession(c).ToggleTheme(c.Request.Context())
	if err != nil {
		s.logger.Warn("[Theme] Failed to persist theme: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"theme": next})
}

// handleExport streams neighborhood statistics as csv, json or xlsx.
func (s *Server) handleExport(c *gin.Context) {
	name, ext, ok := strings.Cut(c.Param("file"), ".")
	if !ok || name != "neighborhoods" {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown export"})
		return
	}
	format, err := export.ParseFormat(ext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.UserMessage(err)})
		return
	}

	stats, err := s.api.NeighborhoodStats(c.Request.Context())
	if err != nil {
		s.logger.Error("[Export] Failed to load neighborhood stats: %v", err)
		c.JSON(statusFor(err), gin.H{"error": errors.UserMessage(err)})
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", `attachment; filename="neighborhoods.`+string(format)+`"`)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, export.NeighborhoodHeaders, export.NeighborhoodRecords(stats)); err != nil {
		s.logger.Error("[Export] Failed to write %s: %v", format, err)
	}
}

// postedFields flattens urlencoded and multipart form posts.
func postedFields(c *gin.Context) map[string]string {
	_ = c.Request.ParseMultipartForm(1 << 20)
	out := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func statusFor(err error) int {
	if stderrors.Is(err, core.ErrStaleEpoch) {
		return http.StatusConflict
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeNetworkError, errors.CodeAPIError, errors.CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
