package release

import (
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// dateLayouts maps a supported locale to its short numeric date layout.
// The first entry is the fallback.
var dateLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.Russian, "02.01.2006"},
	{language.Ukrainian, "02.01.2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/2006"},
	{language.Italian, "2/1/2006"},
	{language.BrazilianPortuguese, "02/01/2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
	{language.Korean, "2006. 1. 2."},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLayouts))
	for i, entry := range dateLayouts {
		tags[i] = entry.tag
	}
	return language.NewMatcher(tags)
}()

// DateFormatter renders release timestamps as locale-style short dates.
type DateFormatter struct {
	tag    language.Tag
	layout string
}

func NewDateFormatter(tag language.Tag) *DateFormatter {
	_, index, confidence := dateMatcher.Match(tag)
	if confidence == language.No {
		index = 0
	}

	return &DateFormatter{
		tag:    dateLayouts[index].tag,
		layout: dateLayouts[index].layout,
	}
}

// DefaultDateFormatter uses the locale of the running process
// (LC_ALL, LC_TIME, LANG in that order).
func DefaultDateFormatter() *DateFormatter {
	return NewDateFormatter(SystemLocale())
}

func (f *DateFormatter) Tag() language.Tag {
	return f.tag
}

func (f *DateFormatter) Format(t time.Time) string {
	return t.Format(f.layout)
}

// SystemLocale parses the POSIX locale environment into a language tag.
func SystemLocale() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if tag, ok := parsePosixLocale(os.Getenv(key)); ok {
			return tag
		}
	}
	return language.AmericanEnglish
}

func parsePosixLocale(value string) (language.Tag, bool) {
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", "-")

	if value == "" || value == "C" || value == "POSIX" {
		return language.Und, false
	}

	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
