package ooxmldate

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale holds the short date and time layouts of a language/region.
type Locale struct {
	Tag  language.Tag
	Date string
	Time string
}

// ISO is used when no better match exists.
var ISO = Locale{Tag: language.Und, Date: "2006-01-02", Time: "15:04:05"}

var locales = []Locale{
	ISO,
	{Tag: language.AmericanEnglish, Date: "1/2/2006", Time: "3:04:05 PM"},
	{Tag: language.BritishEnglish, Date: "02/01/2006", Time: "15:04:05"},
	{Tag: language.German, Date: "02.01.2006", Time: "15:04:05"},
	{Tag: language.French, Date: "02/01/2006", Time: "15:04:05"},
	{Tag: language.Spanish, Date: "2/1/2006", Time: "15:04:05"},
	{Tag: language.Italian, Date: "02/01/2006", Time: "15:04:05"},
	{Tag: language.Dutch, Date: "2-1-2006", Time: "15:04:05"},
	{Tag: language.Polish, Date: "02.01.2006", Time: "15:04:05"},
	{Tag: language.Russian, Date: "02.01.2006", Time: "15:04:05"},
	{Tag: language.Japanese, Date: "2006/01/02", Time: "15:04:05"},
	{Tag: language.Chinese, Date: "2006/1/2", Time: "15:04:05"},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.Tag
	}
	return language.NewMatcher(tags)
}()

// LocaleFor returns the closest supported locale for a BCP 47 tag such as "de-DE".
// POSIX style names ("de_DE.UTF-8") are understood as well. Empty or unknown tags yield ISO.
func LocaleFor(tag string) Locale {
	tag, _, _ = strings.Cut(tag, ".")
	tag, _, _ = strings.Cut(tag, "@")
	tag = strings.ReplaceAll(tag, "_", "-")
	if tag == "" || tag == "C" || tag == "POSIX" {
		return ISO
	}
	t, err := language.Parse(tag)
	if err != nil {
		return ISO
	}
	_, index, confidence := matcher.Match(t)
	if confidence == language.No {
		return ISO
	}
	return locales[index]
}
