package handler

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"voicebridge/internal/mediastore"
)

// MediaHandler serves audio stored on the local tier.
type MediaHandler struct {
	local   *mediastore.Local
	urlPath string
}

// NewMediaHandler serves files of local under urlPath ("/media/").
func NewMediaHandler(local *mediastore.Local, urlPath string) *MediaHandler {
	return &MediaHandler{local: local, urlPath: urlPath}
}

func (h *MediaHandler) RegisterRoutes(e *echo.Echo) {
	e.GET(h.urlPath+":filename", h.Serve)
	e.HEAD(h.urlPath+":filename", h.Serve)
}

// Serve returns a stored audio file. Names that are not a single path
// element are reported as missing.
func (h *MediaHandler) Serve(c echo.Context) error {
	path, err := h.local.Path(c.Param("filename"))
	if err != nil {
		return Error(c, http.StatusNotFound, "file not found")
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Error(c, http.StatusNotFound, "file not found")
	}
	c.Response().Header().Set(echo.HeaderContentType, "audio/wav")
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.File(path)
}
