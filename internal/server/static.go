package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the compiled board frontend. Unknown non-API paths fall
// back to index.html so client-side routes survive a reload.
func (s *Server) mountStatic() {
	if s.staticDir == "" {
		s.logger.Info("static directory not configured, serving API only")
		s.engine.NoRoute(apiNotFound)
		return
	}
	if !isDir(s.staticDir) {
		s.logger.Warn("static directory missing", "path", s.staticDir)
		s.engine.NoRoute(apiNotFound)
		return
	}

	indexPath := filepath.Join(s.staticDir, "index.html")
	if !isFile(indexPath) {
		s.logger.Warn("index.html not found", "path", indexPath)
		s.engine.NoRoute(apiNotFound)
	} else {
		s.engine.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})
		s.engine.NoRoute(func(c *gin.Context) {
			if isAPIPath(c.Request.URL.Path) {
				apiNotFound(c)
				return
			}
			c.File(indexPath)
		})
	}

	if assets := filepath.Join(s.staticDir, "assets"); isDir(assets) {
		s.engine.StaticFS("/assets", gin.Dir(assets, false))
	}
	for _, name := range []string{"favicon.ico", "manifest.json"} {
		if p := filepath.Join(s.staticDir, name); isFile(p) {
			s.engine.StaticFile("/"+name, p)
		}
	}
}

func apiNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
