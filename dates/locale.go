package dates

// Order is the preferred position of the day component in a numeric date
// string for a given locale. It only breaks ties: a component larger than 12
// is always the day of month regardless of locale.
type Order int

const (
	DayFirst Order = iota
	MonthFirst
)

// Locale describes the numeric date conventions of a BCP-47 locale tag.
type Locale struct {
	Tag       string
	Order     Order
	Separator string
}

// Static preference table. Locales not listed here fall back to day-first
// with a slash separator, which matches the majority of supported regions.
var locales = map[string]Locale{
	"en-US": {Tag: "en-US", Order: MonthFirst, Separator: "/"},
	"en-PH": {Tag: "en-PH", Order: MonthFirst, Separator: "/"},
	"en-GB": {Tag: "en-GB", Order: DayFirst, Separator: "/"},
	"en-AU": {Tag: "en-AU", Order: DayFirst, Separator: "/"},
	"fr-FR": {Tag: "fr-FR", Order: DayFirst, Separator: "/"},
	"es-ES": {Tag: "es-ES", Order: DayFirst, Separator: "/"},
	"it-IT": {Tag: "it-IT", Order: DayFirst, Separator: "/"},
	"pt-BR": {Tag: "pt-BR", Order: DayFirst, Separator: "/"},
	"de-DE": {Tag: "de-DE", Order: DayFirst, Separator: "."},
	"ru-RU": {Tag: "ru-RU", Order: DayFirst, Separator: "."},
	"fi-FI": {Tag: "fi-FI", Order: DayFirst, Separator: "."},
	"nl-NL": {Tag: "nl-NL", Order: DayFirst, Separator: "-"},
}

// DefaultLocale is used when no locale information is available.
var DefaultLocale = Locale{Tag: "en-GB", Order: DayFirst, Separator: "/"}

// Lookup returns the Locale for the given tag, or a day-first default for
// unknown tags.
func Lookup(tag string) Locale {
	if loc, ok := locales[tag]; ok {
		return loc
	}
	return Locale{Tag: tag, Order: DayFirst, Separator: "/"}
}
