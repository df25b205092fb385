package i18n

import "math/rand/v2"

const anyCategory = "*"

// motivations are keyed by exercise category. anyCategory lines are used for unknown categories.
//
//nolint:gochecknoglobals // static lookup table.
var motivations = map[Language]map[string][]string{
	English: {
		"strength":    {"Strong and steady!", "Control the way down.", "Every rep builds you up."},
		"cardio":      {"Keep that heart pumping!", "Find your rhythm.", "You've got this pace."},
		"flexibility": {"Breathe into the stretch.", "Relax and lengthen."},
		"balance":     {"Focus on one point.", "Steady does it."},
		"plyometric":  {"Explode up!", "Land soft, jump high."},
		"endurance":   {"Hold on, you're doing great.", "Stay with it."},
		"warmup":      {"Let's get warm.", "Easy start, big finish."},
		"cooldown":    {"Nice work, wind down.", "Slow your breathing."},
		anyCategory:   {"Keep going!", "You're doing great."},
	},
	Finnish: {
		"strength":    {"Vahvasti ja tasaisesti!", "Hallitse laskuvaihe.", "Jokainen toisto kasvattaa."},
		"cardio":      {"Pidä syke ylhäällä!", "Löydä rytmisi.", "Hyvä vauhti."},
		"flexibility": {"Hengitä venytykseen.", "Rentoudu ja pidennä."},
		"balance":     {"Katse yhteen pisteeseen.", "Rauhallisesti."},
		"plyometric":  {"Räjähtävästi ylös!", "Pehmeä alastulo."},
		"endurance":   {"Pidä pintasi, hyvin menee.", "Jaksa vielä."},
		"warmup":      {"Lämmitellään.", "Rauhallinen alku."},
		"cooldown":    {"Hyvää työtä, palautellaan.", "Rauhoita hengitys."},
		anyCategory:   {"Jatka samaan malliin!", "Hyvin menee."},
	},
}

// Motivate returns an encouraging line for an exercise category in lang, picked at random.
// Unknown languages fall back to DefaultLanguage and unknown categories to generic lines.
func Motivate(lang Language, category string) string {
	lines := MotivationLines(lang, category)
	return lines[rand.IntN(len(lines))] //nolint:gosec // not security sensitive.
}

// MotivationLines lists the lines Motivate picks from.
func MotivationLines(lang Language, category string) []string {
	byCategory, ok := motivations[lang]
	if !ok {
		byCategory = motivations[DefaultLanguage]
	}
	if lines, found := byCategory[category]; found {
		return lines
	}
	return byCategory[anyCategory]
}
