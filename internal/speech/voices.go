package speech

import "strings"

// DefaultVoice is used for languages without a mapping.
const DefaultVoice = "alloy"

var builtinVoices = map[string]string{
	"en": "alloy",
	"fr": "nova",
	"yo": "onyx",
	"ig": "echo",
	"ha": "fable",
}

// Voices maps language codes to provider voice identifiers.
type Voices struct {
	fallback string
	byLang   map[string]string
}

// NewVoices merges overrides over the built-in table. An empty fallback keeps
// DefaultVoice.
func NewVoices(fallback string, overrides map[string]string) Voices {
	byLang := make(map[string]string, len(builtinVoices)+len(overrides))
	for lang, voice := range builtinVoices {
		byLang[lang] = voice
	}
	for lang, voice := range overrides {
		byLang[strings.ToLower(lang)] = voice
	}
	if fallback == "" {
		fallback = DefaultVoice
	}
	return Voices{fallback: fallback, byLang: byLang}
}

// For returns the voice for lang. A regional code without its own entry uses
// its base language ("fr-ca" falls back to "fr").
func (v Voices) For(lang string) string {
	lang = strings.ToLower(lang)
	if voice, ok := v.byLang[lang]; ok {
		return voice
	}
	if base, _, found := strings.Cut(lang, "-"); found {
		if voice, ok := v.byLang[base]; ok {
			return voice
		}
	}
	if v.fallback == "" {
		return DefaultVoice
	}
	return v.fallback
}
