package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// pt-BR currency: "R$ 1.234,56", "R$3500", "R$ 99,90".
	currencyPattern = regexp.MustCompile(`R\$\s?\d{1,3}(?:\.\d{3})*(?:,\d{2})?|R\$\s?\d+(?:,\d{2})?`)

	percentPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?\s?%`)

	// BR phone shapes with optional country/area codes.
	phonePattern = regexp.MustCompile(`(?:\+?55\s?)?(?:\(?\d{2}\)?[\s.\-]?)?9?\d{4}[\s.\-]?\d{4}`)

	digitsOnly = regexp.MustCompile(`\D`)
)

// Patterns is the structured result of regex extraction. Lists are empty, not
// nil-vs-error, on malformed input.
type Patterns struct {
	Emails         []string  `json:"emails"`
	Phones         []string  `json:"phones"`
	MonetaryValues []string  `json:"monetary_values"`
	Amounts        []float64 `json:"amounts"`
	Percentages    []string  `json:"percentages"`
	Total          float64   `json:"total"`
}

// ExtractPatterns pulls emails, phone numbers, currency amounts and
// percentages out of raw text, returning parsed numeric values alongside the
// raw matches.
func ExtractPatterns(text string) Patterns {
	p := Patterns{
		Emails:         []string{},
		Phones:         []string{},
		MonetaryValues: []string{},
		Amounts:        []float64{},
		Percentages:    []string{},
	}
	if text == "" {
		return p
	}

	p.Emails = append(p.Emails, emailPattern.FindAllString(text, -1)...)

	for _, raw := range currencyPattern.FindAllString(text, -1) {
		p.MonetaryValues = append(p.MonetaryValues, raw)
		if v, ok := ParseCurrency(raw); ok {
			p.Amounts = append(p.Amounts, v)
			p.Total += v
		}
	}

	p.Percentages = append(p.Percentages, percentPattern.FindAllString(text, -1)...)

	// Strip currency and percentage spans so their digit runs cannot be
	// mistaken for phone numbers.
	stripped := currencyPattern.ReplaceAllString(text, " ")
	stripped = percentPattern.ReplaceAllString(stripped, " ")
	for _, raw := range phonePattern.FindAllString(stripped, -1) {
		digits := digitsOnly.ReplaceAllString(raw, "")
		if len(digits) >= 10 && len(digits) <= 13 {
			p.Phones = append(p.Phones, strings.TrimSpace(raw))
		}
	}

	return p
}

// ParseCurrency parses a pt-BR formatted amount ("R$ 3.500,00") into a float.
func ParseCurrency(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "R$"))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
