// Package locale renders month names and dates for archive labels using
// x/text message catalogs.
package locale

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	sharedCatalog *catalog.Builder
	catalogErr    error
	catalogOnce   sync.Once
	matcher       = language.NewMatcher(Supported)
)

// Locale is a localization provider bound to one language
type Locale struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns the supported locale closest to the requested BCP 47 tag
func New(tag string) (*Locale, error) {
	catalogOnce.Do(func() {
		sharedCatalog, catalogErr = buildCatalog()
	})
	if catalogErr != nil {
		return nil, catalogErr
	}

	requested, err := language.Parse(tag)
	if err != nil {
		slog.Warn("Unknown locale, falling back to English", "locale", tag, "error", err)
		requested = language.English
	}

	_, index, confidence := matcher.Match(requested)
	matched := Supported[index]
	if confidence == language.No {
		matched = language.English
	}

	return &Locale{
		tag:     matched,
		printer: message.NewPrinter(matched, message.Catalog(sharedCatalog)),
	}, nil
}

// Tag returns the matched language
func (l *Locale) Tag() language.Tag {
	return l.tag
}

// MonthName returns the full month name; out-of-range months yield ""
func (l *Locale) MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return l.printer.Sprintf(message.Key(monthKey(month), english.MonthWide(time.Month(month))))
}

// MonthNameShort returns the abbreviated month name
func (l *Locale) MonthNameShort(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return l.printer.Sprintf(message.Key(monthShortKey(month), english.MonthAbbreviated(time.Month(month))))
}

// Weekday returns the full weekday name
func (l *Locale) Weekday(day time.Weekday) string {
	return l.printer.Sprintf(message.Key(weekdayKey(int(day)), english.WeekdayWide(day)))
}

// WeekdayShort returns the abbreviated weekday name
func (l *Locale) WeekdayShort(day time.Weekday) string {
	return l.printer.Sprintf(message.Key(weekdayShortKey(int(day)), english.WeekdayAbbreviated(day)))
}

// MonthYear renders the label used by monthly archives, e.g. "May 2024"
func (l *Locale) MonthYear(month, year int) string {
	// the year is passed as text so the printer does not group its digits
	return l.printer.Sprintf(message.Key(monthYearKey, monthYearFormats[language.English]), l.MonthName(month), strconv.Itoa(year))
}

func (l *Locale) String() string {
	return fmt.Sprintf("locale(%s)", l.tag)
}
