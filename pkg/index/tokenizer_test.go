package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"_", nil},
		{"   ", nil},
		{"USERS", []string{"users"}},
		{"CUSTOMER_ORDERS", []string{"customer", "orders"}},
		{"user profile table", []string{"user", "profile", "table"}},
		{"__double__underscores__", []string{"double", "underscores"}},
		{"Mixed_Case Words", []string{"mixed", "case", "words"}},
		{"tab\tand\nnewline", []string{"tab", "and", "newline"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.input))
		})
	}
}
