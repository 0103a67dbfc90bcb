package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"voicebridge/internal/service/ai"
)

// OpenAI implements Synthesizer and Transcriber with the OpenAI audio API.
type OpenAI struct {
	client   openai.Client
	ttsModel string
	sttModel string
	limiter  *ai.RateLimiter
}

// NewOpenAI creates the audio client. baseURL and httpClient are optional.
func NewOpenAI(apiKey, baseURL, ttsModel, sttModel string, limiter *ai.RateLimiter, httpClient *http.Client) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAI{
		client:   openai.NewClient(opts...),
		ttsModel: ttsModel,
		sttModel: sttModel,
		limiter:  limiter,
	}
}

// Synthesize returns WAV bytes. The tone is sent as delivery instructions on
// models that accept them.
func (o *OpenAI) Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := openai.AudioSpeechNewParams{
		Input:          req.Text,
		Model:          openai.SpeechModel(o.ttsModel),
		Voice:          openai.AudioSpeechNewParamsVoice(req.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	}
	if req.Tone != "" && supportsInstructions(o.ttsModel) {
		params.Instructions = openai.String(fmt.Sprintf("Speak in a %s tone.", req.Tone))
	}

	resp, err := o.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}
	return data, nil
}

// Transcribe returns the recognized text, trimmed.
func (o *OpenAI) Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filename, contentTypeFor(filename)),
		Model: openai.AudioModel(o.sttModel),
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	transcription, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(transcription.Text), nil
}

// tts-1 and tts-1-hd reject the instructions field.
func supportsInstructions(model string) bool {
	return !strings.HasPrefix(strings.ToLower(model), "tts-1")
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
