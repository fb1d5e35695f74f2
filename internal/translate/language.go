package translate

import "strings"

var languageNames = map[string]string{
	"en": "English",
	"tr": "Turkish",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"zh": "Chinese",
	"ar": "Arabic",
}

// LanguageName returns the English name for a language code, or the code
// itself when it is not known.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}
