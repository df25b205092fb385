package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/myrjola/petrarun/internal/contexthelpers"
	"github.com/myrjola/petrarun/internal/i18n"
)

type languageOption struct {
	Code     i18n.Language
	Selected bool
}

type BaseTemplateData struct {
	Language    i18n.Language
	Languages   []languageOption
	CurrentPath string
	// WorkoutSessionID is the workout the browser follows, if any.
	WorkoutSessionID string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	lang := contexthelpers.Language(ctx)
	languages := make([]languageOption, 0, len(i18n.SupportedLanguages()))
	for _, code := range i18n.SupportedLanguages() {
		languages = append(languages, languageOption{Code: code, Selected: code == lang})
	}
	return BaseTemplateData{
		Language:         lang,
		Languages:        languages,
		CurrentPath:      contexthelpers.CurrentPath(ctx),
		WorkoutSessionID: contexthelpers.WorkoutSessionID(ctx),
	}
}

// uiDir finds a directory of the ui tree such as ui/templates. A configured path is used as is. Otherwise the
// working directory is tried first and then the module root, which is where tests inside cmd/web find it.
func uiDir(configured string, name string) (string, error) {
	candidates := []string{configured}
	if configured == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		candidates = []string{filepath.Join(wd, "ui", name)}
		for dir := wd; ; dir = filepath.Dir(dir) {
			if _, err = os.Stat(filepath.Join(dir, "go.mod")); err == nil {
				candidates = append(candidates, filepath.Join(dir, "ui", name))
				break
			}
			if filepath.Dir(dir) == dir {
				break
			}
		}
	}

	for _, candidate := range candidates {
		stat, err := os.Stat(candidate)
		if err == nil && stat.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("ui directory %s not found in %v: %w", name, candidates, os.ErrNotExist)
}
