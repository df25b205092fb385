package i18n_test

import (
	"slices"
	"testing"

	"github.com/myrjola/petrarun/internal/i18n"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		lang i18n.Language
		key  string
		want string
	}{
		{name: "english", lang: i18n.English, key: "workout.pause", want: "Pause"},
		{name: "finnish", lang: i18n.Finnish, key: "workout.pause", want: "Tauko"},
		{name: "unsupported language falls back", lang: "sv", key: "workout.pause", want: "Pause"},
		{name: "missing key returns key", lang: i18n.Finnish, key: "no.such.key", want: "no.such.key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := i18n.Translate(tt.lang, tt.key); got != tt.want {
				t.Errorf("Translate(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	for _, lang := range i18n.SupportedLanguages() {
		if !i18n.IsSupported(lang) {
			t.Errorf("IsSupported(%q) = false", lang)
		}
	}
	if i18n.IsSupported("xx") {
		t.Error(`IsSupported("xx") = true`)
	}
}

func TestMotivate(t *testing.T) {
	categories := []string{"strength", "cardio", "flexibility", "balance", "plyometric", "endurance", "warmup",
		"cooldown", "unknown"}
	for _, lang := range append(i18n.SupportedLanguages(), "xx") {
		for _, category := range categories {
			lines := i18n.MotivationLines(lang, category)
			if len(lines) == 0 {
				t.Fatalf("no lines for %s/%s", lang, category)
			}
			for range 10 {
				if got := i18n.Motivate(lang, category); !slices.Contains(lines, got) {
					t.Errorf("Motivate(%q, %q) = %q, not one of %q", lang, category, got, lines)
				}
			}
		}
	}

	if slices.Equal(i18n.MotivationLines(i18n.English, "cardio"), i18n.MotivationLines(i18n.Finnish, "cardio")) {
		t.Error("Finnish lines equal English lines")
	}
}
