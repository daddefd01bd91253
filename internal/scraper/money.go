package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var moneyRe = regexp.MustCompile(`\$?([\d.]+)\s*([kKmMbB])?`)

// ParseMoney converts a marketplace money string to cents. Sources format
// amounts as "$54,200", "$910k" or "$1.2M"; a nil return means the text
// carried no parseable amount.
func ParseMoney(text string) *int64 {
	text = strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	m := moneyRe.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return nil
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}

	switch strings.ToUpper(m[2]) {
	case "K":
		value *= 1_000
	case "M":
		value *= 1_000_000
	case "B":
		value *= 1_000_000_000
	}

	cents := int64(value * 100)
	return &cents
}

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// ParseMonthDate parses "January 11, 2026" without depending on locale.
func ParseMonthDate(text string) *time.Time {
	parts := strings.Fields(strings.ReplaceAll(text, ",", ""))
	if len(parts) != 3 {
		return nil
	}
	month, ok := months[strings.ToLower(parts[0])]
	if !ok {
		return nil
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
