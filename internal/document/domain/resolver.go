package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// maxKeyAttempts bounds the suffix probe so a pathological name space cannot
// spin forever; exceeding it requires the caller to pick a different name.
const maxKeyAttempts = 20

var ErrCollisionCeiling = errors.New("storage_key_collision_ceiling")

// KeyExistsFunc reports whether a storage key is already taken. The resolver
// carries no storage or database dependency of its own.
type KeyExistsFunc func(ctx context.Context, key string) (bool, error)

// ResolveKey finds the first unused storage key for the desired display name
// under the case's document prefix. The bare name is tried first, then
// numeric suffixes starting at " (2)", lowest available wins.
func ResolveKey(ctx context.Context, caseID snowflake.ID, displayName, ext string, keyExists KeyExistsFunc) (string, error) {
	base := sanitizeName(displayName)
	ext = normalizeExt(ext)

	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s (%d)", base, attempt)
		}
		key := fmt.Sprintf("cases/%s/docs/%s%s", caseID, name, ext)

		taken, err := keyExists(ctx, key)
		if err != nil {
			return "", err
		}
		if !taken {
			return key, nil
		}
	}
	return "", ErrCollisionCeiling
}

// sanitizeName strips path separators and whitespace so a display name can
// never escape the case prefix.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "document"
	}
	return name
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(strings.ToLower(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
