package clippings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MonthTable maps lower-cased full month names of one language to months.
type MonthTable map[string]time.Month

// DefaultLocale is the export language assumed when none is configured.
const DefaultLocale = "en"

var monthTables = map[string]MonthTable{
	"en": newMonthTable("january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"),
	"fr": newMonthTable("janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"),
	"de": newMonthTable("januar", "februar", "märz", "april", "mai", "juni",
		"juli", "august", "september", "oktober", "november", "dezember"),
	"es": newMonthTable("enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"),
	"it": newMonthTable("gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
		"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"),
	"pt": newMonthTable("janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"),
	"nl": newMonthTable("januari", "februari", "maart", "april", "mei", "juni",
		"juli", "augustus", "september", "oktober", "november", "december"),
}

func newMonthTable(names ...string) MonthTable {
	t := make(MonthTable, len(names))
	for i, name := range names {
		t[name] = time.Month(i + 1)
	}
	return t
}

// Months returns the month table for a locale code.
func Months(locale string) (MonthTable, bool) {
	t, ok := monthTables[strings.ToLower(locale)]
	return t, ok
}

// Locales lists the locale codes that have a month table.
func Locales() []string {
	codes := make([]string, 0, len(monthTables))
	for code := range monthTables {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// parseDateClause reads " Added on <Weekday>, <date>". The weekday is dropped
// without being checked against the date.
func parseDateClause(clause string, months MonthTable, locale string, loc *time.Location) (time.Time, error) {
	_, date, ok := strings.Cut(clause, ", ")
	if !ok {
		return time.Time{}, structural("date clause", "missing \"<weekday>, \" prefix")
	}
	return parseDate(date, months, locale, loc)
}

// parseDate reads "<D> <Month> <YYYY> <HH:MM:SS>" as wall-clock time in loc.
func parseDate(s string, months MonthTable, locale string, loc *time.Location) (time.Time, error) {
	fields := strings.Split(s, " ")
	if len(fields) != 4 {
		return time.Time{}, structural("date clause", fmt.Sprintf("expected \"<day> <month> <year> <time>\", got %q", s))
	}

	day, err := boundedInt("day", fields[0], 1, 2, 1, 31)
	if err != nil {
		return time.Time{}, err
	}
	month, ok := months[strings.ToLower(fields[1])]
	if !ok {
		return time.Time{}, &UnknownMonthError{Month: fields[1], Locale: locale}
	}
	year, err := boundedInt("year", fields[2], 4, 4, 0, 9999)
	if err != nil {
		return time.Time{}, err
	}

	clock := strings.Split(fields[3], ":")
	if len(clock) != 3 {
		return time.Time{}, structural("date clause", fmt.Sprintf("expected HH:MM:SS, got %q", fields[3]))
	}
	hour, err := boundedInt("hour", clock[0], 1, 2, 0, 23)
	if err != nil {
		return time.Time{}, err
	}
	minute, err := boundedInt("minute", clock[1], 2, 2, 0, 59)
	if err != nil {
		return time.Time{}, err
	}
	second, err := boundedInt("second", clock[2], 2, 2, 0, 59)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(year, month, day, hour, minute, second, 0, loc)
	if t.Day() != day {
		// time.Date normalises 31 April into 1 May.
		return time.Time{}, &NumericFormatError{Field: "day", Value: fields[0]}
	}
	return t, nil
}

func boundedInt(field, s string, minLen, maxLen, lo, hi int) (int, error) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, &NumericFormatError{Field: field, Value: s}
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, &NumericFormatError{Field: field, Value: s}
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return 0, &NumericFormatError{Field: field, Value: s}
	}
	return v, nil
}
