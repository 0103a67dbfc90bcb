package speech_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"voicebridge/internal/speech"
)

func TestOpenAI_Synthesize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/speech", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFFfake"))
	}))
	defer srv.Close()

	client := speech.NewOpenAI("key", srv.URL, "gpt-4o-mini-tts", "whisper-1", nil, nil)
	data, err := client.Synthesize(context.Background(), speech.SynthesisRequest{
		Text: "Bonjour", Language: "fr", Voice: "nova", Tone: "formal",
	})
	require.NoError(t, err)
	require.Equal(t, []byte("RIFFfake"), data)
	require.Equal(t, "nova", got["voice"])
	require.Equal(t, "wav", got["response_format"])
	require.Equal(t, "Speak in a formal tone.", got["instructions"])
}

func TestOpenAI_Synthesize_LegacyModelSkipsInstructions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	client := speech.NewOpenAI("key", srv.URL, "tts-1", "whisper-1", nil, nil)
	_, err := client.Synthesize(context.Background(), speech.SynthesisRequest{Text: "Hi", Voice: "alloy", Tone: "calm"})
	require.NoError(t, err)
	require.NotContains(t, got, "instructions")
}

func TestOpenAI_Synthesize_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := speech.NewOpenAI("key", srv.URL, "gpt-4o-mini-tts", "whisper-1", nil, nil)
	_, err := client.Synthesize(context.Background(), speech.SynthesisRequest{Text: "Hi", Voice: "alloy"})
	require.ErrorIs(t, err, speech.ErrEmptyResult)
}

func TestOpenAI_Synthesize_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"unknown voice","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := speech.NewOpenAI("key", srv.URL, "gpt-4o-mini-tts", "whisper-1", nil, nil)
	_, err := client.Synthesize(context.Background(), speech.SynthesisRequest{Text: "Hi", Voice: "nobody"})
	require.Error(t, err)
}

func TestOpenAI_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "whisper-1", r.FormValue("model"))
		require.Equal(t, "en", r.FormValue("language"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "recording.wav", header.Filename)
		require.Equal(t, []byte("RIFFaudio"), body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  Hello everyone  "}`))
	}))
	defer srv.Close()

	client := speech.NewOpenAI("key", srv.URL, "gpt-4o-mini-tts", "whisper-1", nil, nil)
	text, err := client.Transcribe(context.Background(), []byte("RIFFaudio"), "recording.wav", "en")
	require.NoError(t, err)
	require.Equal(t, "Hello everyone", text)
}

func TestOpenAI_Transcribe_Silence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	client := speech.NewOpenAI("key", srv.URL, "gpt-4o-mini-tts", "whisper-1", nil, nil)
	text, err := client.Transcribe(context.Background(), []byte("RIFF"), "silence.wav", "en")
	require.NoError(t, err)
	require.Empty(t, text)
}
