package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"voicebridge/internal/handler"
	"voicebridge/internal/model"
	"voicebridge/internal/service"
	svcmock "voicebridge/internal/service/mock"
)

type announcementBody struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Languages    []string          `json:"languages"`
	Translations map[string]string `json:"translations"`
	Tone         string            `json:"tone"`
	AudioFiles   map[string]string `json:"audio_files"`
	CreatedAt    string            `json:"created_at"`
}

type errorBody struct {
	Error string `json:"error"`
}

func newAnnouncementServer(t *testing.T, maxUpload int64) (*echo.Echo, *svcmock.MockAnnouncementService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := svcmock.NewMockAnnouncementService(ctrl)

	e := echo.New()
	h := handler.NewAnnouncementHandler(svc, "", maxUpload)
	h.RegisterRoutes(e.Group("/api"))
	return e, svc
}

func sampleAnnouncement() model.Announcement {
	return model.Announcement{
		ID:           1234567890123,
		Text:         "Gate closes in ten minutes",
		Languages:    []string{"fr"},
		Translations: map[string]string{"fr": "La porte ferme dans dix minutes"},
		Tone:         "urgent",
		AudioFiles:   map[string]string{"fr": "http://example.com/media/announcement_fr_abc.wav"},
		CreatedAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateJSON(t *testing.T) {
	e, svc := newAnnouncementServer(t, 0)
	svc.EXPECT().
		CreateFromText(gomock.Any(), service.CreateAnnouncementInput{
			Text:      "Gate closes in ten minutes",
			Languages: []string{"fr"},
			Tone:      "urgent",
			BaseURL:   "http://example.com",
		}).
		Return(sampleAnnouncement(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/announcements",
		strings.NewReader(`{"text":"Gate closes in ten minutes","languages":["fr"],"tone":"urgent"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body announcementBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "1234567890123", body.ID)
	require.Equal(t, []string{"fr"}, body.Languages)
	require.Equal(t, "La porte ferme dans dix minutes", body.Translations["fr"])
	require.Equal(t, "http://example.com/media/announcement_fr_abc.wav", body.AudioFiles["fr"])
	require.Equal(t, "2026-03-01T09:30:00Z", body.CreatedAt)
}

func TestCreateFormWithLanguageString(t *testing.T) {
	e, svc := newAnnouncementServer(t, 0)
	svc.EXPECT().
		CreateFromText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in service.CreateAnnouncementInput) (model.Announcement, error) {
			require.Equal(t, []string{"fr", "yo"}, in.Languages)
			require.Equal(t, "calm", in.Tone)
			return sampleAnnouncement(), nil
		})

	form := url.Values{}
	form.Set("text", "Boarding now")
	form.Set("languages", `["fr","yo"]`)
	form.Set("tone", "calm")
	req := httptest.NewRequest(http.MethodPost, "/api/announcements", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := serve(e, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateJSONLanguagesAsEncodedString(t *testing.T) {
	e, svc := newAnnouncementServer(t, 0)
	svc.EXPECT().
		CreateFromText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in service.CreateAnnouncementInput) (model.Announcement, error) {
			require.Equal(t, []string{"ha"}, in.Languages)
			return sampleAnnouncement(), nil
		})

	req := httptest.NewRequest(http.MethodPost, "/api/announcements",
		strings.NewReader(`{"text":"hello","languages":"[\"ha\"]"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateMalformedLanguages(t *testing.T) {
	e, _ := newAnnouncementServer(t, 0)

	form := url.Values{}
	form.Set("text", "hello")
	form.Set("languages", "fr,yo")
	req := httptest.NewRequest(http.MethodPost, "/api/announcements", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := serve(e, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Error, "JSON array")
}

func TestCreateInvalidJSON(t *testing.T) {
	e, _ := newAnnouncementServer(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/announcements", strings.NewReader(`{"text":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateErrorMapping(t *testing.T) {
	providerDetail := "upstream said: invalid api key sk-secret"
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation",
			err:        &service.ValidationError{Field: "text", Reason: "text is required"},
			wantStatus: http.StatusBadRequest,
			wantError:  "text is required",
		},
		{
			name:       "translation",
			err:        &service.StageError{Stage: service.StageTranslate, Language: "yo", Err: errors.New(providerDetail)},
			wantStatus: http.StatusBadGateway,
			wantError:  "translation failed for language yo",
		},
		{
			name:       "synthesis",
			err:        &service.StageError{Stage: service.StageSynthesize, Language: "fr", Err: errors.New(providerDetail)},
			wantStatus: http.StatusBadGateway,
			wantError:  "speech synthesis failed for language fr",
		},
		{
			name:       "storage",
			err:        &service.StageError{Stage: service.StageStore, Language: "fr", Err: errors.New("disk full")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "audio storage failed for language fr",
		},
		{
			name:       "persistence",
			err:        &service.StageError{Stage: service.StagePersist, Err: errors.New("database is locked")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "saving announcement failed",
		},
		{
			name:       "unknown",
			err:        errors.New(providerDetail),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, svc := newAnnouncementServer(t, 0)
			svc.EXPECT().CreateFromText(gomock.Any(), gomock.Any()).Return(model.Announcement{}, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/announcements",
				strings.NewReader(`{"text":"hello","languages":["fr"]}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := serve(e, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tt.wantError, body.Error)
			require.NotContains(t, rec.Body.String(), "sk-secret")
		})
	}
}

func multipartAudio(t *testing.T, fields map[string]string, filename, contentType string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if audio != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="audio"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(audio)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestTranscribe(t *testing.T) {
	e, svc := newAnnouncementServer(t, 1<<20)
	svc.EXPECT().
		CreateFromAudio(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in service.CreateFromAudioInput) (model.Announcement, error) {
			require.Equal(t, []byte("webm-bytes"), in.Audio)
			require.Equal(t, "clip.webm", in.Filename)
			require.Equal(t, "audio/webm", in.ContentType)
			require.Equal(t, []string{"fr"}, in.Languages)
			require.Equal(t, "calm", in.Tone)
			require.Equal(t, "http://example.com", in.BaseURL)
			return sampleAnnouncement(), nil
		})

	body, ctype := multipartAudio(t, map[string]string{"languages": `["fr"]`, "tone": "calm"},
		"clip.webm", "audio/webm", []byte("webm-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/announcements/transcribe", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := serve(e, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestTranscribeMissingAudio(t *testing.T) {
	e, _ := newAnnouncementServer(t, 1<<20)

	body, ctype := multipartAudio(t, map[string]string{"languages": `["fr"]`}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/announcements/transcribe", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := serve(e, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscribeTooLarge(t *testing.T) {
	e, _ := newAnnouncementServer(t, 512)

	body, ctype := multipartAudio(t, map[string]string{"languages": `["fr"]`},
		"clip.webm", "audio/webm", bytes.Repeat([]byte{1}, 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/announcements/transcribe", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := serve(e, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestTranscribeTranscriptionFailure(t *testing.T) {
	e, svc := newAnnouncementServer(t, 1<<20)
	svc.EXPECT().
		CreateFromAudio(gomock.Any(), gomock.Any()).
		Return(model.Announcement{}, &service.StageError{Stage: service.StageTranscribe, Err: errors.New("503 from provider")})

	body, ctype := multipartAudio(t, map[string]string{"languages": `["fr"]`},
		"clip.webm", "audio/webm", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/announcements/transcribe", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := serve(e, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var eb errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eb))
	require.Equal(t, "speech recognition failed", eb.Error)
}

func TestList(t *testing.T) {
	e, svc := newAnnouncementServer(t, 0)
	svc.EXPECT().ListHistory(gomock.Any(), 0).Return([]model.Announcement{sampleAnnouncement()}, nil)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/announcements", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var list []announcementBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "1234567890123", list[0].ID)
}

func TestListEmpty(t *testing.T) {
	e, svc := newAnnouncementServer(t, 0)
	svc.EXPECT().ListHistory(gomock.Any(), 5).Return(nil, nil)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/announcements?limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestListBadLimit(t *testing.T) {
	for _, limit := range []string{"abc", "0", "-3"} {
		t.Run(limit, func(t *testing.T) {
			e, _ := newAnnouncementServer(t, 0)
			rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/announcements?limit="+limit, nil))
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGet(t *testing.T) {
	e, svc := newAnnouncementServer(t, 0)
	svc.EXPECT().GetByID(gomock.Any(), int64(1234567890123)).Return(sampleAnnouncement(), nil)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/announcements/1234567890123", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetNotFound(t *testing.T) {
	e, svc := newAnnouncementServer(t, 0)
	svc.EXPECT().GetByID(gomock.Any(), int64(42)).Return(model.Announcement{}, service.ErrNotFound)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/announcements/42", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInvalidID(t *testing.T) {
	e, _ := newAnnouncementServer(t, 0)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/announcements/abc", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
