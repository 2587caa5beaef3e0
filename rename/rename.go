// Package rename provides field-name transformation strategies used to derive
// wire names from declared field names. A strategy is a pure function applied
// consistently to both inbound binding and outbound serialization.
package rename

import (
	"fmt"
	"strings"
	"unicode"
)

// Strategy transforms a declared field name into its wire name.
type Strategy func(string) string

// Identity returns the field name unchanged.
func Identity(name string) string { return name }

// Upper returns the field name in all caps.
func Upper(name string) string { return strings.ToUpper(name) }

// Lower returns the field name in all lowercase.
func Lower(name string) string { return strings.ToLower(name) }

// Camel converts an underscore-separated name to camelCase. Word boundaries
// are underscores only; empty segments produced by leading, trailing, or
// consecutive underscores are dropped.
func Camel(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Pascal converts an underscore-separated name to PascalCase using the same
// word-splitting rule as Camel.
func Pascal(name string) string {
	var b strings.Builder
	for _, w := range splitWords(name) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// FromName returns the built-in strategy registered under the given name.
// Recognized names: "identity" (or empty), "upper", "lower", "camel", "pascal".
func FromName(name string) (Strategy, error) {
	switch name {
	case "", "identity":
		return Identity, nil
	case "upper":
		return Upper, nil
	case "lower":
		return Lower, nil
	case "camel":
		return Camel, nil
	case "pascal":
		return Pascal, nil
	default:
		return nil, fmt.Errorf("unknown rename strategy %q", name)
	}
}

func splitWords(name string) []string {
	parts := strings.Split(name, "_")
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
