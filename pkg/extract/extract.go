// Package extract pulls typed fields out of unstructured auction-listing
// text. Each extractor is pure and returns an ok flag instead of erroring;
// callers decide whether a missing field disqualifies the record.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	priceRe     = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d{1,2})?)`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	hoursRe     = regexp.MustCompile(`(?i)([\d,]+)\s*(?:hours|hrs|hr)\b`)
	quotedYrRe  = regexp.MustCompile(`'(\d{2})\b`)
	fullYearRe  = regexp.MustCompile(`\b(19[6-9]\d|20[0-4]\d)\b`)
	modelRe     = regexp.MustCompile(`\b(\d{3,4}[A-Z]{1,3})\b`)
	auctionRe   = regexp.MustCompile(`([A-Z][A-Za-z&.'\- ]{2,48}Auc(?:tion(?:s|eers)?)?)`)
)

// knownBrands maps uppercase needles to canonical brand names. Longer
// needles come first so "CASE IH" wins over "CASE".
var knownBrands = []struct {
	needle    string
	canonical string
}{
	{"JOHN DEERE", "John Deere"},
	{"MASSEY FERGUSON", "Massey Ferguson"},
	{"NEW HOLLAND", "New Holland"},
	{"INTERNATIONAL HARVESTER", "International Harvester"},
	{"CASE IH", "Case IH"},
	{"CATERPILLAR", "Caterpillar"},
	{"KUBOTA", "Kubota"},
	{"FENDT", "Fendt"},
	{"CLAAS", "Claas"},
	{"AGCO", "AGCO"},
	{"CASE", "Case"},
}

// Price returns the first currency-formatted amount in text.
func Price(text string) (float64, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// SaleDate returns the first calendar date in text, accepting MM/DD/YYYY
// (the auction-report format) and YYYY-MM-DD.
func SaleDate(text string) (time.Time, bool) {
	if m := slashDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(m[3], m[1], m[2]); ok {
			return d, true
		}
	}
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// Hours returns the first hours-of-use figure in text.
func Hours(text string) (float64, bool) {
	m := hoursRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ModelYear returns the equipment model year. Auction reports abbreviate
// years as '18; a quoted year is preferred over any bare four-digit year,
// which could equally be part of an address or lot number.
func ModelYear(text string) (int, bool) {
	if m := quotedYrRe.FindStringSubmatch(text); m != nil {
		yy, _ := strconv.Atoi(m[1])
		if yy <= (time.Now().Year()-2000)+1 {
			return 2000 + yy, true
		}
		return 1900 + yy, true
	}
	// Bare four-digit years are only trusted once calendar dates are
	// removed, so a sale date never masquerades as a model year.
	stripped := slashDateRe.ReplaceAllString(text, "")
	stripped = isoDateRe.ReplaceAllString(stripped, "")
	if m := fullYearRe.FindStringSubmatch(stripped); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y, true
	}
	return 0, false
}

// Brand returns the canonical equipment brand mentioned in text.
func Brand(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, b := range knownBrands {
		if strings.Contains(upper, b.needle) {
			return b.canonical, true
		}
	}
	return "", false
}

// Model returns the model designation in text. When the queried model is
// known it takes precedence: a fragment mentioning it is attributed to
// that model rather than to whatever token pattern-matching finds first.
func Model(text, queried string) (string, bool) {
	if queried != "" && strings.Contains(strings.ToUpper(text), strings.ToUpper(queried)) {
		return strings.ToUpper(queried), true
	}
	if m := modelRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

// AuctionCompany returns the name of the auction house in text.
func AuctionCompany(text string) (string, bool) {
	m := auctionRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func makeDate(y, mo, d string) (time.Time, bool) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(mo)
	day, _ := strconv.Atoi(d)
	if year < 1990 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
