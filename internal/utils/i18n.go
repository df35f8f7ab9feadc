package utils

// Server-side labels for rendered reports and a few API messages.
// Nepali falls back to English per key.

// SupportedLocales lists the locales the server can render.
var SupportedLocales = []string{"en", "ne"}

var translations = map[string]map[string]string{
	"en": {
		"health.ok":             "ok",
		"report.title":          "Career Interest Report",
		"report.cover":          "Your Holland Code",
		"report.profile":        "Profile",
		"report.scores":         "Interest Scores",
		"report.type_detail":    "Interest Type",
		"report.summary":        "Summary",
		"report.next_steps":     "Next Steps",
		"report.not_specified":  "Not specified",
		"report.generated_at":   "Generated",
		"report.traits":         "Traits",
		"report.abilities":      "Abilities",
		"report.careers":        "Careers",
		"report.environments":   "Work environments",
		"field.full_name":       "Full name",
		"field.email":           "Email",
		"field.phone":           "Phone",
		"field.age":             "Age",
		"field.gender":          "Gender",
		"field.education":       "Education",
		"field.occupation":      "Occupation",
		"field.location":        "Location",
		"field.time_taken":      "Time taken",
		"field.rank":            "Rank",
		"field.score":           "Score",
		"field.percent":         "Percent",
		"field.type":            "Type",
		"error.internal":        "internal error",
		"error.session_missing": "session not found",
	},
	"ne": {
		"health.ok":             "ठीक छ",
		"report.title":          "करियर रुचि प्रतिवेदन",
		"report.cover":          "तपाईंको हल्याण्ड कोड",
		"report.profile":        "विवरण",
		"report.scores":         "रुचि अंक",
		"report.type_detail":    "रुचि प्रकार",
		"report.summary":        "सारांश",
		"report.next_steps":     "अर्को कदम",
		"report.not_specified":  "उल्लेख नगरिएको",
		"report.generated_at":   "तयार मिति",
		"report.traits":         "गुणहरू",
		"report.abilities":      "क्षमताहरू",
		"report.careers":        "पेशाहरू",
		"report.environments":   "कार्य वातावरण",
		"field.full_name":       "पूरा नाम",
		"field.email":           "इमेल",
		"field.phone":           "फोन",
		"field.age":             "उमेर",
		"field.gender":          "लिङ्ग",
		"field.education":       "शिक्षा",
		"field.occupation":      "पेशा",
		"field.location":        "ठेगाना",
		"field.time_taken":      "लागेको समय",
		"field.rank":            "स्थान",
		"field.score":           "अंक",
		"field.percent":         "प्रतिशत",
		"field.type":            "प्रकार",
		"error.session_missing": "सत्र फेला परेन",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
