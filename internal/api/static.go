package api

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// serveStatic writes the file under staticDir named by the request path.
// It reports false when nothing was served.
func (h *Handler) serveStatic(c *gin.Context) bool {
	if h.staticDir == "" {
		return false
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return false
	}

	f, err := http.Dir(h.staticDir).Open(path.Clean("/" + c.Request.URL.Path))
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return true
}
