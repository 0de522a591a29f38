package ui

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"pricedash/internal/session"
)

const (
	// SessionCookie names the cookie carrying the session id.
	SessionCookie = "pricedash_session"
	sessionKey    = "session"
	cookieMaxAge  = 365 * 24 * 60 * 60
)

// setupMiddleware serves the embedded static assets
func (s *Server) setupMiddleware() {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		s.logger.Error("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// requireSession resolves the session cookie. Requests without a live session
// get 401 so the shell reloads the page.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no session"})
			return
		}
		sess, ok := s.sessions.Get(id)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

func setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, cookieMaxAge, "/", "", false, true)
}
