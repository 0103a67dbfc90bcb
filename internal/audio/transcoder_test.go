package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"voicebridge/internal/audio"
)

// fakeTool writes a shell script standing in for ffmpeg. It copies fixture to
// the last argument, or fails with stderr output when fixture is empty.
func fakeTool(t *testing.T, fixture []byte) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tool requires a POSIX shell")
	}
	dir := t.TempDir()

	script := "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"
	if fixture != nil {
		fixturePath := filepath.Join(dir, "fixture.wav")
		require.NoError(t, os.WriteFile(fixturePath, fixture, 0o600))
		script = "#!/bin/sh\nfor last; do :; done\ncp '" + fixturePath + "' \"$last\"\n"
	}

	path := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestFFmpeg_Transcode(t *testing.T) {
	wav := withListChunk(t, pcmWAV(t, 1, 16000, 1600))
	scratch := t.TempDir()
	tool := &audio.FFmpeg{Path: fakeTool(t, wav), TempDir: scratch}

	out, err := tool.Transcode(context.Background(), []byte("webm bytes"), "audio/webm;codecs=opus")
	require.NoError(t, err)
	require.Equal(t, wav, out)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	require.Empty(t, entries, "scratch files must be removed")
}

func TestFFmpeg_Transcode_ToolFailure(t *testing.T) {
	scratch := t.TempDir()
	tool := &audio.FFmpeg{Path: fakeTool(t, nil), TempDir: scratch}

	_, err := tool.Transcode(context.Background(), []byte("garbage"), "audio/webm")
	var transcodeErr *audio.TranscodeError
	require.True(t, errors.As(err, &transcodeErr))
	require.Contains(t, transcodeErr.Output, "Invalid data found")

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFFmpeg_Transcode_UnexpectedFormat(t *testing.T) {
	tool := &audio.FFmpeg{Path: fakeTool(t, pcmWAV(t, 2, 44100, 100)), TempDir: t.TempDir()}

	_, err := tool.Transcode(context.Background(), []byte("x"), "audio/ogg")
	var transcodeErr *audio.TranscodeError
	require.ErrorAs(t, err, &transcodeErr)
	require.Contains(t, err.Error(), "unexpected output format")
}

func TestFFmpeg_Transcode_MissingBinary(t *testing.T) {
	tool := &audio.FFmpeg{Path: filepath.Join(t.TempDir(), "no-such-ffmpeg"), TempDir: t.TempDir()}

	_, err := tool.Transcode(context.Background(), []byte("x"), "")
	var transcodeErr *audio.TranscodeError
	require.ErrorAs(t, err, &transcodeErr)
}
