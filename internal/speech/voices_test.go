package speech_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voicebridge/internal/speech"
)

func TestVoices_For(t *testing.T) {
	voices := speech.NewVoices("", nil)

	require.Equal(t, "nova", voices.For("fr"))
	require.Equal(t, "onyx", voices.For("YO"))
	require.Equal(t, "nova", voices.For("fr-ca"))
	require.Equal(t, speech.DefaultVoice, voices.For("de"))
}

func TestVoices_Overrides(t *testing.T) {
	voices := speech.NewVoices("shimmer", map[string]string{"fr": "coral", "DE": "sage"})

	require.Equal(t, "coral", voices.For("fr"))
	require.Equal(t, "sage", voices.For("de"))
	require.Equal(t, "echo", voices.For("ig"))
	require.Equal(t, "shimmer", voices.For("sw"))
}

func TestVoices_ZeroValue(t *testing.T) {
	var voices speech.Voices
	require.Equal(t, speech.DefaultVoice, voices.For("fr"))
}
