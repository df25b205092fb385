// Package i18n holds the user-facing copy of petrarun in every supported language.
package i18n

// Language represents a supported language.
type Language string

const (
	// English is the English language.
	English Language = "en"
	// Finnish is the Finnish language.
	Finnish Language = "fi"
)

// DefaultLanguage is the fallback language.
const DefaultLanguage = English

// translations maps language codes to translation keys and their values.
//
//nolint:gochecknoglobals // static lookup table.
var translations = map[Language]map[string]string{
	English: {
		"home.title":               "Petrarun",
		"home.tagline":             "Pick a plan and follow along.",
		"home.plans":               "Plans",
		"home.recent":              "Recent workouts",
		"home.no_recent":           "No workouts yet.",
		"home.resume":              "Continue your workout",
		"plan.exercises":           "exercises",
		"plan.start":               "Start",
		"workout.start":            "Start workout",
		"workout.pause":            "Pause",
		"workout.resume":           "Resume",
		"workout.rep":              "+1 rep",
		"workout.set":              "Complete set",
		"workout.skip_set":         "Skip set",
		"workout.skip_rest":        "Skip rest",
		"workout.complete":         "Finish workout",
		"workout.end":              "Abandon workout",
		"workout.rest":             "Rest",
		"workout.up_next":          "Up next",
		"workout.paused":           "Paused",
		"workout.progress":         "Progress",
		"workout.calories":         "kcal",
		"completion.title":         "Workout summary",
		"completion.fully":         "Every exercise done!",
		"completion.partial":       "Finished early",
		"completion.duration":      "Active time",
		"completion.calories":      "Calories",
		"completion.rate":          "How did it feel?",
		"completion.rating":        "Your rating",
		"completion.sets":          "sets",
		"completion.home":          "Back to plans",
		"error.title":              "Something went wrong",
		"not_found.title":          "Not found",
		"language.picker.label":    "Language",
		"language.name.en":         "English",
		"language.name.fi":         "Suomi",
		"language.picker.submit":   "Change",
		"completion.rating.prefix": "Rate",
	},
	Finnish: {
		"home.title":               "Petrarun",
		"home.tagline":             "Valitse ohjelma ja treenaa mukana.",
		"home.plans":               "Ohjelmat",
		"home.recent":              "Viimeisimmät treenit",
		"home.no_recent":           "Ei vielä treenejä.",
		"home.resume":              "Jatka treeniä",
		"plan.exercises":           "liikettä",
		"plan.start":               "Aloita",
		"workout.start":            "Aloita treeni",
		"workout.pause":            "Tauko",
		"workout.resume":           "Jatka",
		"workout.rep":              "+1 toisto",
		"workout.set":              "Sarja valmis",
		"workout.skip_set":         "Ohita sarja",
		"workout.skip_rest":        "Ohita lepo",
		"workout.complete":         "Lopeta treeni",
		"workout.end":              "Keskeytä treeni",
		"workout.rest":             "Lepo",
		"workout.up_next":          "Seuraavaksi",
		"workout.paused":           "Tauolla",
		"workout.progress":         "Edistyminen",
		"workout.calories":         "kcal",
		"completion.title":         "Treenin yhteenveto",
		"completion.fully":         "Kaikki liikkeet tehty!",
		"completion.partial":       "Lopetettu kesken",
		"completion.duration":      "Aktiivinen aika",
		"completion.calories":      "Kalorit",
		"completion.rate":          "Miltä tuntui?",
		"completion.rating":        "Arviosi",
		"completion.sets":          "sarjaa",
		"completion.home":          "Takaisin ohjelmiin",
		"error.title":              "Jokin meni vikaan",
		"not_found.title":          "Sivua ei löytynyt",
		"language.picker.label":    "Kieli",
		"language.name.en":         "English",
		"language.name.fi":         "Suomi",
		"language.picker.submit":   "Vaihda",
		"completion.rating.prefix": "Arvio",
	},
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{English, Finnish}
}

// IsSupported checks if a language is supported.
func IsSupported(lang Language) bool {
	_, ok := translations[lang]
	return ok
}

// Translate returns the translation for the given key in the specified language.
// If the key is not found, it falls back to the default language.
// If still not found, it returns the key itself.
func Translate(lang Language, key string) string {
	if translation, ok := translations[lang][key]; ok {
		return translation
	}
	if translation, ok := translations[DefaultLanguage][key]; ok {
		return translation
	}
	return key
}
