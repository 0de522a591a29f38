package ui

import (
	"bytes"

	"github.com/gin-gonic/gin"
)

// renderTemplate executes a template into a buffer first so a failing
// template never leaves a half-written response.
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// renderShell produces the initial page every session document starts from.
func (s *Server) renderShell() (string, error) {
	var buf bytes.Buffer
	err := s.templates.ExecuteTemplate(&buf, "shell.html", struct {
		Title string
		Links []navLink
	}{AppTitle, navLinks})
	return buf.String(), err
}
