// Package parser turns pipe-delimited book lists into structured entries.
//
// The accepted grammar is one book per line in the form:
//
//	Title | Quantity | Price
//
// Parse silently drops malformed lines so an import can do whatever it can,
// while Validate enumerates them so a UI can tell the user what is wrong
// before submitting.
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Line is one parsed entry from a book list.
type Line struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	LineNumber int     `json:"line_number"`
	RawText    string  `json:"raw_text"`
}

// Report is the result of validating raw input without importing it.
type Report struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Parse splits multi-line input into entries. Blank lines and lines that do
// not match the grammar are dropped. Line numbers are 1-indexed positions in
// the raw input.
func Parse(text string) []Line {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var entries []Line
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		entry, ok := ParseLine(line)
		if !ok {
			continue
		}
		entry.LineNumber = i + 1
		entries = append(entries, entry)
	}

	return entries
}

// ParseLine parses a single "Title | Quantity | Price" line. The second
// return value is false when the line does not have exactly three fields or
// the title is empty.
func ParseLine(line string) (Line, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 3 {
		return Line{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	title := parts[0]
	if title == "" {
		return Line{}, false
	}

	return Line{
		Title:    title,
		Quantity: ParseQuantity(parts[1]),
		Price:    ParsePrice(parts[2]),
		RawText:  line,
	}, true
}

// ParseQuantity extracts a positive integer from free-form text. Anything
// that is not a digit is stripped, and results below 1 default to 1.
func ParseQuantity(s string) int {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// ParsePrice extracts a non-negative price from free-form text, tolerating
// currency marks and both "1,000.50" and "1.000,50" separator conventions.
func ParsePrice(s string) float64 {
	var kept strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			kept.WriteRune(r)
		}
	}
	cleaned := kept.String()

	commas := strings.Count(cleaned, ",")
	dots := strings.Count(cleaned, ".")

	switch {
	case commas > 0 && dots > 0:
		// Both present: whichever appears later is the decimal separator.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case commas > 1:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case dots > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	case commas == 1:
		// Decimal separator only when at most two characters follow it.
		if len(cleaned)-strings.Index(cleaned, ",") <= 3 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// Validate checks raw input and reports every malformed line by its
// 1-indexed position. Input is valid when it is non-empty and at least one
// line parses.
func Validate(text string) Report {
	if strings.TrimSpace(text) == "" {
		return Report{Valid: false, Errors: []string{"input is empty"}}
	}

	report := Report{Valid: true}
	validLines := 0

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if parts := strings.Split(line, "|"); len(parts) != 3 {
			report.Errors = append(report.Errors,
				fmt.Sprintf("line %d: invalid format, expected \"Title | Quantity | Price\"", i+1))
			continue
		}
		validLines++
	}

	if validLines == 0 {
		report.Valid = false
		report.Errors = append(report.Errors, "no valid book entries found")
	}

	return report
}

// SampleFormat returns an example input block for documentation and UI hints.
func SampleFormat() string {
	return "1000 First Words in German | 1 | 16,000\n" +
		"101 Video Games to Play Before You Grow Up | 1 | 8,000\n" +
		"1, 2, 3, Do the Dinosaur | 2 | 4,500\n" +
		"12th of Never | 1 | 3,000\n" +
		"30 Book Samples to Change Your Life | 1 | 7,000"
}
