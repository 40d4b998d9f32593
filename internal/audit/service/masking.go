package service

import "strings"

const maskToken = "****"

// secretKeys marks metadata keys whose values must never be persisted in
// the clear. Magic-link tokens and URLs land here.
var secretKeys = map[string]bool{
	"token":    true,
	"url":      true,
	"secret":   true,
	"password": true,
}

// maskSecret redacts a value, keeping a four-character suffix so entries
// stay correlatable.
func maskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// maskMetadata returns a copy of the metadata with secret-keyed string
// values redacted, recursing into nested maps.
func maskMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		masked[trimmedKey] = maskValue(trimmedKey, value)
	}
	return masked
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if secretKeys[strings.ToLower(key)] {
			return maskSecret(cast)
		}
		return cast
	case map[string]any:
		return maskMetadata(cast)
	default:
		return value
	}
}
