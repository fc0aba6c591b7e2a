package v1

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Home answers GET /: the front-end's index.html when present, otherwise
// a plain greeting.
func (h *Handler) Home(c *gin.Context) {
	if index, ok := h.staticFile("index.html"); ok {
		c.File(index)
		return
	}
	c.String(http.StatusOK, "Hello, World!")
}

func (h *Handler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		full, ok := h.staticFile(name)
		if !ok {
			c.String(http.StatusNotFound, "Page not found")
			return
		}
		c.File(full)
	}
}

// guardedPage is page for routes registered behind PageGuard. The file is
// remembered so the static fallback never serves it directly.
func (h *Handler) guardedPage(name string) gin.HandlerFunc {
	h.guarded[name] = struct{}{}
	return h.page(name)
}

// NotFound serves files from the static directory for unmatched GET and
// HEAD requests and answers 404 otherwise. Pages behind PageGuard are
// never served from here.
func (h *Handler) NotFound(c *gin.Context) {
	if h.opts.StaticDir != "" && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) && !h.isGuarded(c.Request.URL.Path) {
		fs := http.Dir(h.opts.StaticDir)
		if f, err := fs.Open(c.Request.URL.Path); err == nil {
			info, statErr := f.Stat()
			f.Close()
			if statErr == nil && !info.IsDir() {
				c.FileFromFS(c.Request.URL.Path, fs)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

func (h *Handler) staticFile(name string) (string, bool) {
	if h.opts.StaticDir == "" {
		return "", false
	}
	full := filepath.Join(h.opts.StaticDir, name)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}
	return full, true
}

func (h *Handler) isGuarded(urlPath string) bool {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	_, ok := h.guarded[name]
	return ok
}
