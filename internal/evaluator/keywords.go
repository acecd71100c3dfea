package evaluator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// knownFunctions are spreadsheet functions that count as concrete references.
var knownFunctions = []string{
	"SUM", "SUMIF", "SUMIFS", "AVERAGE", "COUNT", "COUNTIF", "VLOOKUP", "HLOOKUP",
	"XLOOKUP", "INDEX", "MATCH", "IF", "IFS", "PIVOT", "CONCATENATE", "TEXT", "TRIM",
}

// matchKeywords splits keywords into those present in answer and those missing.
// Matching is case-insensitive; alphanumeric keywords must sit on word boundaries
// and may carry a plural "s".
func matchKeywords(answer string, keywords []string) (matched, missing []string) {
	lower := strings.ToLower(answer)
	for _, kw := range keywords {
		if containsKeyword(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
			continue
		}
		missing = append(missing, kw)
	}
	return matched, missing
}

// mentionedFunctions returns the known functions referenced in answer.
func mentionedFunctions(answer string) []string {
	matched, _ := matchKeywords(answer, knownFunctions)
	return matched
}

func containsKeyword(text, kw string) bool {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return false
	}
	if strings.IndexFunc(kw, isWordRune) == -1 {
		return strings.Contains(text, kw)
	}

	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], kw)
		if i == -1 {
			return false
		}
		start := offset + i
		end := start + len(kw)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, size := utf8.DecodeRuneInString(text[i:])
	if !isWordRune(r) {
		return true
	}
	if r != 's' || i+size >= len(text) {
		return r == 's'
	}
	next, _ := utf8.DecodeRuneInString(text[i+size:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
