package locale

import (
	"strings"
)

const (
	DefaultTimezone = "UTC"
	DefaultCountry  = "BR"
)

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code (e.g., "BR", "US")
	Name            string   // Human-readable country name
	PhonePrefixes   []string // Valid phone number prefixes (e.g., ["+55", "55"])
	DefaultTimezone string   // IANA timezone identifier (e.g., "America/Sao_Paulo")
	Currency        string   // ISO 4217 currency code
}

var (
	Countries = map[string]Country{
		"BR": {
			Code:            "BR",
			Name:            "Brazil",
			PhonePrefixes:   []string{"+55", "55"},
			DefaultTimezone: "America/Sao_Paulo",
			Currency:        "BRL",
		},
		"US": {
			Code:            "US",
			Name:            "United States",
			PhonePrefixes:   []string{"+1", "1"},
			DefaultTimezone: "America/New_York",
			Currency:        "USD",
		},
	}

	TimeZoneTags = map[string][]string{
		"BR": {"America/Sao_Paulo", "Brazil/East", "America/Fortaleza", "America/Manaus", "America/Recife"},
		"US": {"America/New_York", "America/Los_Angeles", "US/Eastern", "US/Pacific"},
	}
)

func DetectRegion(tz string) string {
	for region, zones := range TimeZoneTags {
		for _, z := range zones {
			if strings.EqualFold(tz, z) {
				return region
			}
		}
	}
	return DefaultCountry
}

// CurrencyFor returns the currency of a country code, falling back to the default country.
func CurrencyFor(code string) string {
	if c, ok := Countries[strings.ToUpper(code)]; ok {
		return c.Currency
	}
	return Countries[DefaultCountry].Currency
}
