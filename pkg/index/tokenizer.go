package index

import "strings"

// Tokenize splits a name or remarks field into lowercase comparison tokens.
// Tokens are delimited by underscores and whitespace; empty tokens are
// dropped. The function is pure and never fails -- an empty input yields an
// empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == '_' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
