package release

import (
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestDateFormatterLayouts(t *testing.T) {
	instant := time.Date(2021, time.March, 7, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		tag      language.Tag
		expected string
	}{
		{language.MustParse("en-US"), "3/7/2021"},
		{language.MustParse("en-GB"), "07/03/2021"},
		{language.MustParse("ru-RU"), "07.03.2021"},
		{language.MustParse("de-AT"), "7.3.2021"},
		{language.MustParse("ja-JP"), "2021/3/7"},
	}

	for _, tc := range cases {
		formatter := NewDateFormatter(tc.tag)
		if got := formatter.Format(instant); got != tc.expected {
			t.Errorf("Expected '%s' for %s, got '%s'", tc.expected, tc.tag, got)
		}
	}
}

func TestDateFormatterFallback(t *testing.T) {
	formatter := NewDateFormatter(language.Und)
	instant := time.Date(2021, time.March, 7, 12, 0, 0, 0, time.UTC)

	if got := formatter.Format(instant); got != "3/7/2021" {
		t.Errorf("Expected fallback layout '3/7/2021', got '%s'", got)
	}
}

func TestSystemLocale(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_TIME", "ru_RU.UTF-8")
	t.Setenv("LANG", "en_US.UTF-8")

	if base, _ := SystemLocale().Base(); base.String() != "ru" {
		t.Errorf("Expected LC_TIME locale 'ru', got '%s'", base)
	}

	t.Setenv("LC_TIME", "C")
	if base, _ := SystemLocale().Base(); base.String() != "en" {
		t.Errorf("Expected LANG locale 'en', got '%s'", base)
	}

	t.Setenv("LANG", "")
	if got := SystemLocale(); got != language.AmericanEnglish {
		t.Errorf("Expected default locale en-US, got '%s'", got)
	}
}
