package locale

import (
	"fmt"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/nl"
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// translators supply CLDR month and weekday names for every catalog language
var translators = map[language.Tag]locales.Translator{
	language.English: en.New(),
	language.German:  de.New(),
	language.French:  fr.New(),
	language.Spanish: es.New(),
	language.Dutch:   nl.New(),
}

// monthYearFormats are the monthly archive label patterns; languages not
// listed use the English one
var monthYearFormats = map[language.Tag]string{
	language.English: "%[1]s %[2]s",
	language.Spanish: "%[1]s de %[2]s",
}

// english backs the default text of every message key
var english = translators[language.English]

// Supported lists the catalog languages, English first so it wins ties
var Supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Dutch,
}

// message keys
func monthKey(m int) string        { return fmt.Sprintf("month.%d", m) }
func monthShortKey(m int) string   { return fmt.Sprintf("month.short.%d", m) }
func weekdayKey(d int) string      { return fmt.Sprintf("weekday.%d", d) }
func weekdayShortKey(d int) string { return fmt.Sprintf("weekday.short.%d", d) }

const monthYearKey = "month.year"

func buildCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	for tag, tr := range translators {
		set := func(key, msg string) error {
			if err := b.SetString(tag, key, msg); err != nil {
				return fmt.Errorf("failed to set %s for %s: %w", key, tag, err)
			}
			return nil
		}

		for m := time.January; m <= time.December; m++ {
			if err := set(monthKey(int(m)), tr.MonthWide(m)); err != nil {
				return nil, err
			}
			if err := set(monthShortKey(int(m)), tr.MonthAbbreviated(m)); err != nil {
				return nil, err
			}
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			if err := set(weekdayKey(int(d)), tr.WeekdayWide(d)); err != nil {
				return nil, err
			}
			if err := set(weekdayShortKey(int(d)), tr.WeekdayAbbreviated(d)); err != nil {
				return nil, err
			}
		}

		monthYear, ok := monthYearFormats[tag]
		if !ok {
			monthYear = monthYearFormats[language.English]
		}
		if err := set(monthYearKey, monthYear); err != nil {
			return nil, err
		}
	}

	return b, nil
}
