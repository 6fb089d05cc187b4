package proxy

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

var localeWordRegexp = regexp.MustCompile(`(?i)[a-z]+`)

// Locale is one entry of a locale preference list such as "en-US;q=0.8".
type Locale struct {
	// Code is the locale as the caller wrote it, without quality.
	Code     string
	Language string
	Country  string
	Score    float64
}

// NewLocale parses a single locale. The first run of letters is the language
// and the second, if any, the country.
func NewLocale(code string) Locale {
	l := Locale{Code: code}

	words := localeWordRegexp.FindAllString(code, -1)
	if len(words) == 0 {
		return l
	}

	l.Language = strings.ToLower(words[0])
	if len(words) > 1 {
		l.Country = strings.ToUpper(words[1])
	}

	return l
}

// String returns the locale as it was received.
func (l Locale) String() string {
	return l.Code
}

// Normalized returns the locale as language_COUNTRY.
func (l Locale) Normalized() string {
	if l.Country == "" {
		return l.Language
	}

	return l.Language + "_" + l.Country
}

// Tag returns the BCP 47 tag for the locale, language.Und when it cannot be
// represented.
func (l Locale) Tag() language.Tag {
	if l.Language == "" {
		return language.Und
	}

	code := l.Language
	if l.Country != "" {
		code += "-" + l.Country
	}

	tag, err := language.Parse(code)
	if err != nil {
		return language.Make(l.Language)
	}

	return tag
}

// Locales is a list of locales ordered by decreasing preference.
type Locales []Locale

// ParseLocales parses a comma separated locale list with optional ";q="
// qualities, as found in the Accept-Language header. Entries keep their
// relative order when qualities tie.
func ParseLocales(s string) Locales {
	if s == "" {
		return Locales{}
	}

	items := strings.Split(s, ",")
	locales := make(Locales, 0, len(items))

	for _, item := range items {
		code, quality, hasQuality := strings.Cut(item, ";")

		l := NewLocale(strings.TrimSpace(code))
		l.Score = 1
		if hasQuality {
			l.Score = parseQuality(quality)
		}

		locales = append(locales, l)
	}

	sort.SliceStable(locales, func(i, j int) bool {
		return locales[i].Score > locales[j].Score
	})

	return locales
}

func parseQuality(s string) float64 {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0
	}

	q, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return 0
	}

	return q
}

// Valid returns true when every locale has a two letter language.
func (ls Locales) Valid() bool {
	for _, l := range ls {
		if len(l.Language) != 2 {
			return false
		}
	}

	return true
}

// Tags returns the BCP 47 tags of the locales in preference order.
func (ls Locales) Tags() []language.Tag {
	tags := make([]language.Tag, 0, len(ls))
	for _, l := range ls {
		tags = append(tags, l.Tag())
	}

	return tags
}

// Match returns the supported tag that best fits the preferences, its index
// in supported and the confidence of the match. The first supported tag is
// the fallback.
func (ls Locales) Match(supported ...language.Tag) (language.Tag, int, language.Confidence) {
	if len(supported) == 0 {
		return language.Und, -1, language.No
	}

	tag, index, confidence := language.NewMatcher(supported).Match(ls.Tags()...)
	return tag, index, confidence
}

// Strings returns the locales as received.
func (ls Locales) Strings() []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.String())
	}

	return out
}
