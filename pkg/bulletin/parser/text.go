package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// foldText case-folds s and collapses all whitespace runs to single spaces.
func foldText(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// containsFold reports whether substr occurs in s, ignoring case and
// whitespace differences.
func containsFold(s, substr string) bool {
	return strings.Contains(foldText(s), foldText(substr))
}

// hasWordPrefixFold reports whether s starts with prefix, ignoring case and
// whitespace differences, and the prefix is not followed by a Latin letter or
// a digit.
func hasWordPrefixFold(s, prefix string) bool {
	fs, fp := foldText(s), foldText(prefix)
	if fp == "" || !strings.HasPrefix(fs, fp) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(fs[len(fp):])
	return next == utf8.RuneError || !(unicode.Is(unicode.Latin, next) || unicode.IsDigit(next))
}

// menuItemFixes are applied in order.
var menuItemFixes = [][2]string{
	{"Biscuit /", "Biscuit/"},
	{"Juice /", "Juice/"},
	{" \n", "\n"},
	{"\n ", "\n"},
}

// cleanMenuItem normalizes spacing quirks seen in menu cells.
func cleanMenuItem(s string) string {
	s = strings.TrimSpace(s)
	for _, fix := range menuItemFixes {
		s = strings.ReplaceAll(s, fix[0], fix[1])
	}
	return s
}
