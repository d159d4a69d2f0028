package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// CookieName and StorageKey hold the explicit language preference.
const (
	CookieName = "lng"
	StorageKey = "lng"
)

var matcher = language.NewMatcher([]language.Tag{language.Persian, language.English})

// Detect picks the UI language from the lng cookie, the mirrored local
// storage value and the navigator Accept-Language list.
//
// Without an explicit preference the panel is Persian. An explicit supported
// preference wins (cookie first, then storage). The navigator list is only
// consulted when the stored preference names an unsupported language.
func Detect(cookie, storage, navigator string) string {
	cookie = normalize(cookie)
	storage = normalize(storage)

	if cookie == "" && storage == "" {
		return Persian
	}
	for _, candidate := range []string{cookie, storage} {
		if isKnown(candidate) {
			return candidate
		}
	}
	if lang, ok := matchNavigator(navigator); ok {
		return lang
	}
	return Persian
}

func matchNavigator(header string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	if idx == 1 {
		return English, true
	}
	return Persian, true
}

func normalize(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if i := strings.IndexAny(v, "-_"); i > 0 {
		v = v[:i]
	}
	return v
}

func isKnown(lang string) bool {
	return lang == Persian || lang == English
}
