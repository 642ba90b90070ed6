package ui

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"adoptdash/internal/errors"
)

//go:embed templates/*.html static/css/*
var embeddedFiles embed.FS

// parseTemplates loads the embedded page templates.
func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"display": display,
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}
	return templates, nil
}

func staticFS() (http.FileSystem, error) {
	sub, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open static assets")
	}
	return http.FS(sub), nil
}

// renderTemplate renders into a buffer first so a failing template never
// leaves a half written page behind.
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("[Server] template %s failed: %v", name, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, newErrorBody(errors.Wrap(err, "template rendering failed")))
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
