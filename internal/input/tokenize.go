// Package input splits raw player input into guess tokens.
package input

import (
	"strings"
	"unicode"
)

// Tokenize splits line on runs of whitespace and commas.
// Empty tokens are dropped, so "red, blue  green,yellow" yields four tokens.
func Tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
