package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
)

func existsIn(keys ...string) KeyExistsFunc {
	set := map[string]bool{}
	for _, k := range keys {
		set[k] = true
	}
	return func(_ context.Context, key string) (bool, error) {
		return set[key], nil
	}
}

func TestResolveKeyUnusedNameIsUnchanged(t *testing.T) {
	key, err := ResolveKey(context.Background(), 42, "w2-acme", ".pdf", existsIn())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if key != "cases/42/docs/w2-acme.pdf" {
		t.Fatalf("key = %q", key)
	}
}

func TestResolveKeySuffixesStartAtTwo(t *testing.T) {
	ctx := context.Background()
	caseID := snowflake.ID(42)

	key, err := ResolveKey(ctx, caseID, "w2-acme", ".pdf", existsIn(
		"cases/42/docs/w2-acme.pdf",
	))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if key != "cases/42/docs/w2-acme (2).pdf" {
		t.Fatalf("second key = %q", key)
	}

	key, err = ResolveKey(ctx, caseID, "w2-acme", ".pdf", existsIn(
		"cases/42/docs/w2-acme.pdf",
		"cases/42/docs/w2-acme (2).pdf",
	))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if key != "cases/42/docs/w2-acme (3).pdf" {
		t.Fatalf("third key = %q", key)
	}
}

func TestResolveKeyPicksLowestAvailableSuffix(t *testing.T) {
	// A freed-up (2) slot wins over higher suffixes.
	key, err := ResolveKey(context.Background(), 42, "w2-acme", ".pdf", existsIn(
		"cases/42/docs/w2-acme.pdf",
		"cases/42/docs/w2-acme (3).pdf",
	))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if key != "cases/42/docs/w2-acme (2).pdf" {
		t.Fatalf("key = %q", key)
	}
}

func TestResolveKeyCeiling(t *testing.T) {
	everything := func(_ context.Context, _ string) (bool, error) { return true, nil }

	_, err := ResolveKey(context.Background(), 42, "w2-acme", ".pdf", everything)
	if !errors.Is(err, ErrCollisionCeiling) {
		t.Fatalf("got %v, want ErrCollisionCeiling", err)
	}
}

func TestResolveKeyBoundedProbes(t *testing.T) {
	probes := 0
	everything := func(_ context.Context, _ string) (bool, error) {
		probes++
		return true, nil
	}

	_, _ = ResolveKey(context.Background(), 42, "w2-acme", ".pdf", everything)
	if probes != maxKeyAttempts {
		t.Fatalf("probes = %d, want %d", probes, maxKeyAttempts)
	}
}

func TestResolveKeyPropagatesLookupError(t *testing.T) {
	boom := fmt.Errorf("oracle down")
	failing := func(_ context.Context, _ string) (bool, error) { return false, boom }

	_, err := ResolveKey(context.Background(), 42, "w2-acme", ".pdf", failing)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want lookup error", err)
	}
}

func TestResolveKeySanitizesName(t *testing.T) {
	key, err := ResolveKey(context.Background(), 42, "  ../../etc/passwd  ", "pdf", existsIn())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if key != "cases/42/docs/.._.._etc_passwd.pdf" {
		t.Fatalf("key = %q", key)
	}
}
