package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"voicebridge/internal/model"
	"voicebridge/internal/service"
)

type AnnouncementHandler struct {
	service        service.AnnouncementService
	publicBaseURL  string
	maxUploadBytes int64
}

type createAnnouncementRequest struct {
	Text      string          `json:"text"`
	Languages json.RawMessage `json:"languages" swaggertype:"array,string"`
	Tone      string          `json:"tone"`
}

type announcementResponse struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Languages    []string          `json:"languages"`
	Translations map[string]string `json:"translations"`
	Tone         string            `json:"tone"`
	AudioFiles   map[string]string `json:"audio_files"`
	CreatedAt    string            `json:"created_at"`
}

// NewAnnouncementHandler creates the handler. publicBaseURL, when set,
// replaces the request origin in local audio URLs.
func NewAnnouncementHandler(service service.AnnouncementService, publicBaseURL string, maxUploadBytes int64) *AnnouncementHandler {
	return &AnnouncementHandler{
		service:        service,
		publicBaseURL:  publicBaseURL,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *AnnouncementHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/announcements", h.Create)
	g.POST("/announcements/transcribe", h.Transcribe)
	g.GET("/announcements", h.List)
	g.GET("/announcements/:id", h.Get)
}

// Create creates an announcement from text.
// @Summary Create an announcement
// @Description Translate text into each language, synthesize speech and store the record. Accepts JSON or form fields; a form languages value is a JSON array string.
// @Tags announcements
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param announcement body createAnnouncementRequest true "Announcement request"
// @Success 201 {object} announcementResponse
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c echo.Context) error {
	var req createAnnouncementRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
	} else {
		req.Text = c.FormValue("text")
		req.Languages = json.RawMessage(c.FormValue("languages"))
		req.Tone = c.FormValue("tone")
	}

	languages, err := parseLanguages(req.Languages)
	if err != nil {
		return writeServiceError(c, err)
	}

	a, err := h.service.CreateFromText(c.Request().Context(), service.CreateAnnouncementInput{
		Text:      req.Text,
		Languages: languages,
		Tone:      req.Tone,
		BaseURL:   baseURL(c, h.publicBaseURL),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toAnnouncementResponse(a))
}

// Transcribe creates an announcement from a recording.
// @Summary Create an announcement from audio
// @Description Transcribe an English recording, then translate and synthesize it like a text announcement.
// @Tags announcements
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Recording"
// @Param languages formData string true "JSON array of language codes, e.g. [\"fr\",\"yo\"]"
// @Param tone formData string false "Delivery tone"
// @Success 201 {object} announcementResponse
// @Failure 400 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /announcements/transcribe [post]
func (h *AnnouncementHandler) Transcribe(c echo.Context) error {
	if h.maxUploadBytes > 0 {
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		if isBodyTooLarge(err) {
			return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "audio file too large"})
		}
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "audio file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "audio file is unreadable"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "audio file is unreadable"})
	}

	languages, err := parseLanguages(json.RawMessage(c.FormValue("languages")))
	if err != nil {
		return writeServiceError(c, err)
	}

	a, err := h.service.CreateFromAudio(c.Request().Context(), service.CreateFromAudioInput{
		Audio:       data,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Languages:   languages,
		Tone:        c.FormValue("tone"),
		BaseURL:     baseURL(c, h.publicBaseURL),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toAnnouncementResponse(a))
}

// List returns recent announcements.
// @Summary List announcement history
// @Description Newest first. limit defaults to 20 and is capped at 100.
// @Tags announcements
// @Produce json
// @Param limit query int false "Maximum number of records"
// @Success 200 {array} announcementResponse
// @Failure 400 {object} errorResponse
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		}
		limit = n
	}

	list, err := h.service.ListHistory(c.Request().Context(), limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	response := make([]announcementResponse, 0, len(list))
	for _, a := range list {
		response = append(response, toAnnouncementResponse(a))
	}
	return c.JSON(http.StatusOK, response)
}

// Get returns one announcement.
// @Summary Get an announcement
// @Tags announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 200 {object} announcementResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /announcements/{id} [get]
func (h *AnnouncementHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	a, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toAnnouncementResponse(a))
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func toAnnouncementResponse(a model.Announcement) announcementResponse {
	languages := a.Languages
	if languages == nil {
		languages = []string{}
	}
	translations := a.Translations
	if translations == nil {
		translations = map[string]string{}
	}
	audioFiles := a.AudioFiles
	if audioFiles == nil {
		audioFiles = map[string]string{}
	}
	return announcementResponse{
		ID:           idToString(a.ID),
		Text:         a.Text,
		Languages:    languages,
		Translations: translations,
		Tone:         a.Tone,
		AudioFiles:   audioFiles,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
