// Package locale maps ISO 3166-1 alpha-2 country codes to the locale tags
// gofakeit understands, for the faker generator's locale_from option
// (spec §4.3 "faker").
package locale

import "strings"

// DefaultLocale is used when a country code isn't in the curated table.
const DefaultLocale = "en"

// byCountry is a curated subset of gofakeit's supported locales keyed by
// ISO country code. Countries not listed fall back to DefaultLocale rather
// than failing generation, since locale only affects the flavor of
// generated strings, never determinism or shape.
var byCountry = map[string]string{
	"US": "en",
	"GB": "en_GB",
	"CA": "en_CA",
	"AU": "en_AU",
	"DE": "de",
	"AT": "de_AT",
	"CH": "de_CH",
	"FR": "fr",
	"ES": "es",
	"MX": "es_MX",
	"IT": "it",
	"NL": "nl",
	"PT": "pt",
	"BR": "pt_BR",
	"RU": "ru",
	"UA": "uk",
	"PL": "pl",
	"CZ": "cz",
	"JP": "ja",
	"CN": "zh_CN",
	"TW": "zh_TW",
	"KR": "ko",
	"IN": "en_IND",
	"ID": "id_ID",
	"VN": "vi",
	"TR": "tr",
	"SE": "sv",
	"NO": "nb_NO",
	"DK": "dk",
	"FI": "fi",
	"GR": "el",
	"IL": "he",
	"SA": "ar_SA",
}

// Resolve maps an ISO country code (case-insensitive) to a gofakeit locale
// tag, defaulting to DefaultLocale for unknown or empty input.
func Resolve(countryCode string) string {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if locale, ok := byCountry[code]; ok {
		return locale
	}
	return DefaultLocale
}
