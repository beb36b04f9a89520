package search

import (
	"strings"
	"unicode"
)

const DefaultExcerptWindow = 280

// Excerpt returns up to window characters of context centred on the first
// case-insensitive match of query, or the leading window characters when
// query does not occur. Newlines are flattened to spaces.
func Excerpt(text string, query string, window int) string {
	if text == "" {
		return ""
	}
	if window <= 0 {
		window = DefaultExcerptWindow
	}

	runes := []rune(text)
	start, end := 0, min(window, len(runes))

	if matchStart := indexFold(runes, []rune(query)); matchStart >= 0 {
		matchEnd := matchStart + len([]rune(query))
		start = max(0, matchStart-window/2)
		end = min(len(runes), matchEnd+window/2)
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	return strings.ReplaceAll(snippet, "\n", " ")
}

// containsFold reports whether query occurs in text ignoring case.
func containsFold(text string, query string) bool {
	return indexFold([]rune(text), []rune(query)) >= 0
}

// indexFold is a rune-wise case-insensitive search. Lowering one rune at a
// time keeps offsets aligned with the original text.
func indexFold(text []rune, query []rune) int {
	if len(query) == 0 || len(query) > len(text) {
		return -1
	}

	lowered := make([]rune, len(query))
	for i, r := range query {
		lowered[i] = unicode.ToLower(r)
	}

	for i := 0; i <= len(text)-len(lowered); i++ {
		matched := true
		for j, r := range lowered {
			if unicode.ToLower(text[i+j]) != r {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}

	return -1
}
