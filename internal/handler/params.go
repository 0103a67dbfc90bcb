package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"voicebridge/internal/service"
)

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func idToString(id int64) string {
	return strconv.FormatInt(id, 10)
}

var errMalformedLanguages = &service.ValidationError{
	Field:  "languages",
	Reason: "languages must be a JSON array of language codes",
}

// parseLanguages decodes a language list sent either as a JSON array or as a
// string holding a JSON array (the multipart form encoding). Missing input
// yields nil so the service reports it as a missing value.
func parseLanguages(raw json.RawMessage) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := json.Unmarshal([]byte(trimmed), &encoded); err != nil {
			return nil, errMalformedLanguages
		}
		return parseLanguages(json.RawMessage(encoded))
	}

	var languages []string
	if err := json.Unmarshal([]byte(trimmed), &languages); err != nil {
		return nil, errMalformedLanguages
	}
	return languages, nil
}

// baseURL is the absolute origin for locally stored audio URLs.
func baseURL(c echo.Context, public string) string {
	if public != "" {
		return public
	}
	return c.Scheme() + "://" + c.Request().Host
}
