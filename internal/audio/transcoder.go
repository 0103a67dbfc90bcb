// Package audio normalizes uploaded recordings with ffmpeg.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"voicebridge/internal/logger"
)

// maxToolOutput caps the diagnostic text kept on a TranscodeError.
const maxToolOutput = 4096

// Transcoder converts an arbitrary audio container to normalized WAV.
type Transcoder interface {
	Transcode(ctx context.Context, data []byte, contentType string) ([]byte, error)
}

// TranscodeError is returned when the tool fails or produces unusable output.
// Output carries the tool's diagnostics.
type TranscodeError struct {
	Output string
	Err    error
}

func (e *TranscodeError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("transcode failed: %v", e.Err)
	}
	return fmt.Sprintf("transcode failed: %v: %s", e.Err, e.Output)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// FFmpeg runs the ffmpeg binary at Path. Scratch files live under TempDir
// (os.TempDir when empty) and are removed on every return path.
type FFmpeg struct {
	Path    string
	TempDir string
}

func NewFFmpeg(path string) *FFmpeg {
	return &FFmpeg{Path: path}
}

func (f *FFmpeg) Transcode(ctx context.Context, data []byte, contentType string) ([]byte, error) {
	start := time.Now()

	dir, err := os.MkdirTemp(f.TempDir, "transcode-*")
	if err != nil {
		return nil, &TranscodeError{Err: fmt.Errorf("create scratch dir: %w", err)}
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input"+extensionFor(contentType))
	out := filepath.Join(dir, "output.wav")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, &TranscodeError{Err: fmt.Errorf("write input: %w", err)}
	}

	cmd := exec.CommandContext(ctx, f.Path,
		"-y", "-i", in,
		"-ac", strconv.Itoa(NormalizedChannels),
		"-ar", strconv.Itoa(NormalizedSampleRate),
		"-acodec", "pcm_s16le",
		"-f", "wav",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		logger.Warn("transcode failed",
			"module", "audio", "action", "transcode", "resource", "audio", "result", "failed",
			"content_type", contentType, "bytes", len(data), "error", err)
		return nil, &TranscodeError{Output: truncate(strings.TrimSpace(string(output))), Err: err}
	}

	result, err := os.ReadFile(out)
	if err != nil {
		return nil, &TranscodeError{Err: fmt.Errorf("read output: %w", err)}
	}

	info, err := InspectWAV(result)
	if err != nil {
		return nil, &TranscodeError{Err: err}
	}
	if !info.Normalized() {
		return nil, &TranscodeError{Err: fmt.Errorf("unexpected output format: %d ch, %d Hz, %d bit",
			info.Channels, info.SampleRate, info.BitsPerSample)}
	}

	logger.Debug("transcoded audio",
		"module", "audio", "action", "transcode", "resource", "audio", "result", "ok",
		"content_type", contentType, "bytes", len(data), "output_bytes", len(result),
		"audio_duration_ms", info.Duration.Milliseconds(), "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// ffmpeg probes the content; the extension is only a hint.
func extensionFor(contentType string) string {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(mediaType) {
	case "audio/webm", "video/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/x-m4a", "audio/aac":
		return ".m4a"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	default:
		return ".bin"
	}
}

// truncate keeps the tail, where ffmpeg reports the failure.
func truncate(s string) string {
	if len(s) <= maxToolOutput {
		return s
	}
	return s[len(s)-maxToolOutput:]
}
