package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// VoiceTable is the on-disk shape of VOICES_FILE:
//
//	default: alloy
//	voices:
//	  fr: nova
//	  yo: onyx
type VoiceTable struct {
	Default string            `yaml:"default"`
	Voices  map[string]string `yaml:"voices"`
}

// LoadVoiceTable reads a voice table from path. An empty path yields an empty
// table so callers can merge it over built-in defaults unconditionally.
func LoadVoiceTable(path string) (VoiceTable, error) {
	if path == "" {
		return VoiceTable{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return VoiceTable{}, fmt.Errorf("read voices file %s: %w", path, err)
	}

	var table VoiceTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return VoiceTable{}, fmt.Errorf("parse voices file %s: %w", path, err)
	}

	normalized := make(map[string]string, len(table.Voices))
	for lang, voice := range table.Voices {
		lang = strings.ToLower(strings.TrimSpace(lang))
		voice = strings.TrimSpace(voice)
		if lang == "" || voice == "" {
			return VoiceTable{}, fmt.Errorf("parse voices file %s: empty language or voice", path)
		}
		normalized[lang] = voice
	}
	table.Voices = normalized
	table.Default = strings.TrimSpace(table.Default)
	return table, nil
}
