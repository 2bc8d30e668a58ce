package tools

import (
	"strings"
	"time"
)

type localeLayout struct {
	date string
	time string
	at   string
}

// Bare languages cover the regions without an entry of their own
var layouts = map[string]localeLayout{
	"pt":    {date: "02/01/2006", time: "15:04", at: "às"},
	"pt-br": {date: "02/01/2006", time: "15:04", at: "às"},
	"pt-pt": {date: "02/01/2006", time: "15:04", at: "às"},
	"es":    {date: "02/01/2006", time: "15:04", at: "a las"},
	"en-us": {date: "01/02/2006", time: "3:04 PM", at: "at"},
	"en-gb": {date: "02/01/2006", time: "15:04", at: "at"},
	"en":    {date: "02/01/2006", time: "15:04", at: "at"},
}

// pt-BR is the product default
var defaultLayout = layouts["pt-br"]

func layoutFor(locale string) localeLayout {
	key := strings.ToLower(strings.TrimSpace(locale))
	if l, ok := layouts[key]; ok {
		return l
	}
	if i := strings.IndexByte(key, '-'); i > 0 {
		if l, ok := layouts[key[:i]]; ok {
			return l
		}
	}
	return defaultLayout
}

// FormatDate renders t's calendar date for locale.
func FormatDate(t time.Time, locale string) string {
	return t.Format(layoutFor(locale).date)
}

// FormatTime renders t's clock time for locale.
func FormatTime(t time.Time, locale string) string {
	return t.Format(layoutFor(locale).time)
}

// FormatDateTime renders e.g. "01/06/2024 às 10:00" for pt-BR.
func FormatDateTime(t time.Time, locale string) string {
	l := layoutFor(locale)
	return t.Format(l.date) + " " + l.at + " " + t.Format(l.time)
}
