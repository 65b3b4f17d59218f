package httpapi

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// staticHandler serves the web client from a directory. An empty dir
// disables static serving.
type staticHandler struct {
	dir    string
	health *healthHandler
	logger *slog.Logger
}

func newStaticHandler(dir string, health *healthHandler, logger *slog.Logger) *staticHandler {
	return &staticHandler{dir: dir, health: health, logger: logger}
}

// Index serves index.html when present and the health status otherwise.
func (h *staticHandler) Index(c *gin.Context) {
	if file, ok := h.lookup(indexFile); ok {
		c.File(file)
		return
	}
	h.health.Health(c)
}

// Serve handles every unmatched route.
func (h *staticHandler) Serve(c *gin.Context) {
	method := c.Request.Method
	if h.dir == "" || (method != http.MethodGet && method != http.MethodHead) {
		writeError(c, http.StatusNotFound, "Endpoint not found", "")
		return
	}
	file, ok := h.lookup(c.Request.URL.Path)
	if !ok {
		h.logger.Warn("static file not found", "path", c.Request.URL.Path)
		writeError(c, http.StatusNotFound, "File not found", "")
		return
	}
	c.File(file)
}

// lookup resolves a URL path to a regular file inside dir. Hidden files and
// directories (.env, .git) are never served.
func (h *staticHandler) lookup(urlPath string) (string, bool) {
	if h.dir == "" {
		return "", false
	}
	clean := path.Clean("/" + urlPath)
	for _, seg := range strings.Split(clean, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	full := filepath.Join(h.dir, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return full, true
}
