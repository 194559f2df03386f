package config

import (
	"errors"
	"sort"
	"testing"
)

func TestDefaultEntries(t *testing.T) {
	entries := DefaultEntries()

	requiredKeys := []string{
		"api.base_url",
		"api.access_token",
		"api.timeout_seconds",
		"voice.seed",
		"voice.version",
		"voice.policy",
		"voice.ceiling",
		"voice.max_retries",
		"voice.requests_per_minute",
		"text.model",
	}

	keys := make(map[string]bool)
	for _, e := range entries {
		if e.Description == "" {
			t.Errorf("key %s has no description", e.Key)
		}
		keys[e.Key] = true
	}
	for _, key := range requiredKeys {
		if !keys[key] {
			t.Errorf("DefaultEntries() missing required key: %s", key)
		}
	}

	if !sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key }) {
		t.Error("DefaultEntries() should be sorted by key")
	}
}

func TestGetDefault(t *testing.T) {
	t.Run("existing_key", func(t *testing.T) {
		entry, err := GetDefault("voice.policy")
		if err != nil {
			t.Fatalf("GetDefault() error = %v", err)
		}
		if entry.Value != "keep" {
			t.Errorf("GetDefault() Value = %v, want %q", entry.Value, "keep")
		}
	})

	t.Run("non_existent_key", func(t *testing.T) {
		_, err := GetDefault("does.not.exist")
		if !errors.Is(err, ErrNoDefault) {
			t.Errorf("GetDefault() error = %v, want ErrNoDefault", err)
		}
	})
}
