package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"fleximart/internal/domain"
)

// CleanDate parses messy date strings into ISO yyyy-mm-dd, or nil when the
// input is empty or unparseable. Resolution is an ordered list of strategies;
// the first success wins:
//
//  1. exact ISO shape, validated against the calendar ("2023-02-30" fails);
//  2. a fixed table of explicit layouts, tried in order;
//  3. a permissive generic parse, guided by a day-first/month-first hint
//     inferred from the numeric tokens.
//
// The ordering keeps well-formed input deterministic and confines
// ambiguity-guessing to genuinely ill-formed strings.
func CleanDate(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, strat := range dateStrategies {
		if out, ok := strat(s); ok {
			return &out
		}
	}
	return nil
}

var dateStrategies = []func(string) (string, bool){
	parseExactISO,
	parseExplicitLayouts,
	parseGenericHinted,
}

var isoShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func parseExactISO(s string) (string, bool) {
	if !isoShape.MatchString(s) {
		return "", false
	}
	if _, err := time.Parse(domain.ISODate, s); err != nil {
		// Right shape but not a real calendar date; no later strategy can
		// rescue it either, but fall through for uniformity.
		return "", false
	}
	return s, true
}

// explicitLayouts are tried in order; first match wins. Year-first layouts
// precede day-first, which precede month-first, so e.g. "15/01/2023" resolves
// day-first without ever consulting the heuristic. The numeric elements are
// the unpadded forms ("2", "1"), which time.Parse matches against both
// one- and two-digit tokens; the padded forms would reject "5/1/2023".
// Month-name forms come last, they are unambiguous.
var explicitLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"1/2/2006",
	"1-2-2006",
	"1.2.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

func parseExplicitLayouts(s string) (string, bool) {
	for _, layout := range explicitLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.ISODate), true
		}
	}
	return "", false
}

// dayHint is the explicit result of the day-first inference. Ambiguous input
// is its own case rather than an implicit default.
type dayHint int

const (
	hintAmbiguous dayHint = iota
	hintDayFirst
	hintMonthFirst
)

var (
	tokenSplit = regexp.MustCompile(`\D+`)
	yearFirst  = regexp.MustCompile(`^\s*\d{4}\D`)
)

// inferDayFirst compares the first two numeric tokens of s. A leading
// four-digit year means the string is year-first and no hint applies. If the
// first token exceeds 12 and the second does not, the date is day-first; the
// reverse means month-first; anything else stays ambiguous.
func inferDayFirst(s string) dayHint {
	if yearFirst.MatchString(s) {
		return hintAmbiguous
	}
	tokens := splitNumericTokens(s)
	if len(tokens) < 2 {
		return hintAmbiguous
	}
	a, errA := strconv.Atoi(tokens[0])
	b, errB := strconv.Atoi(tokens[1])
	if errA != nil || errB != nil {
		return hintAmbiguous
	}
	switch {
	case a > 12 && b <= 12:
		return hintDayFirst
	case b > 12 && a <= 12:
		return hintMonthFirst
	}
	return hintAmbiguous
}

func splitNumericTokens(s string) []string {
	parts := tokenSplit.Split(s, -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseGenericHinted is the permissive fallback: it splits the string into
// numeric tokens and interprets three-token forms. A four-digit leading token
// is a year; otherwise the trailing token must be the year and the hint
// decides day/month order, with ambiguous input read month-first (the
// convention of the generic parser the pipeline grew up with).
func parseGenericHinted(s string) (string, bool) {
	tokens := splitNumericTokens(s)
	if len(tokens) != 3 {
		return "", false
	}
	var year, month, day int
	switch {
	case len(tokens[0]) == 4:
		year = atoi(tokens[0])
		month = atoi(tokens[1])
		day = atoi(tokens[2])
	case len(tokens[2]) == 4:
		year = atoi(tokens[2])
		if inferDayFirst(s) == hintDayFirst {
			day = atoi(tokens[0])
			month = atoi(tokens[1])
		} else {
			month = atoi(tokens[0])
			day = atoi(tokens[1])
		}
	default:
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject anything that
	// did not round-trip.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	return t.Format(domain.ISODate), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
