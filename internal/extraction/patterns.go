package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ConvertExample turns a literal example value into a regular expression that
// matches other values of the same shape. Digit runs become `\d{n}`, ASCII
// letter runs become `[a-zA-Z]{n}`, whitespace runs become `\s{n}`, and any
// other rune is escaped. Double-quoted sections are matched verbatim with the
// quotes removed, so "INV"-2024 keeps the INV prefix literal.
func ConvertExample(example string) string {
	var out strings.Builder
	var quoted strings.Builder
	inQuotes := false

	runes := []rune(example)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == '"' {
			if inQuotes {
				out.WriteString(regexp.QuoteMeta(quoted.String()))
				quoted.Reset()
			}
			inQuotes = !inQuotes
			i++
			continue
		}
		if inQuotes {
			quoted.WriteRune(r)
			i++
			continue
		}
		switch {
		case unicode.IsSpace(r):
			n := runLength(runes, i, unicode.IsSpace)
			writeClass(&out, `\s`, n)
			i += n
		case isASCIILetter(r):
			n := runLength(runes, i, isASCIILetter)
			writeClass(&out, `[a-zA-Z]`, n)
			i += n
		case isASCIIDigit(r):
			n := runLength(runes, i, isASCIIDigit)
			writeClass(&out, `\d`, n)
			i += n
		default:
			out.WriteString(regexp.QuoteMeta(string(r)))
			i++
		}
	}
	// Unterminated quote: treat the buffered tail as literal text.
	if quoted.Len() > 0 {
		out.WriteString(regexp.QuoteMeta(quoted.String()))
	}
	return out.String()
}

func runLength(runes []rune, start int, match func(rune) bool) int {
	n := 0
	for i := start; i < len(runes) && match(runes[i]); i++ {
		n++
	}
	return n
}

func writeClass(out *strings.Builder, class string, n int) {
	out.WriteString(class)
	if n > 1 {
		fmt.Fprintf(out, "{%d}", n)
	}
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// PatternMatch is a single occurrence found by TestPattern.
type PatternMatch struct {
	Match    string
	Captured string
}

// PatternReport summarizes a dry run of one pattern against sample text.
// Extraction uses the first capture group, so HasCaptureGroup false warns the
// operator that the pattern would fall back to the full match.
type PatternReport struct {
	Pattern         string
	HasCaptureGroup bool
	Matches         []PatternMatch
}

// TestPattern compiles pattern the way the extraction pipeline does
// (case-insensitive) and reports every match in text.
func TestPattern(pattern, text string) (PatternReport, error) {
	report := PatternReport{Pattern: pattern}
	re, err := compilePattern(pattern)
	if err != nil {
		return report, fmt.Errorf("compile pattern: %w", err)
	}
	report.HasCaptureGroup = re.NumSubexp() > 0
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		match := PatternMatch{Match: m[0]}
		if len(m) > 1 {
			match.Captured = strings.TrimSpace(m[1])
		}
		report.Matches = append(report.Matches, match)
	}
	return report, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}
