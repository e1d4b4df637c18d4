package blocks

import (
	"fmt"
	"regexp"
	"strings"
)

// embeddedJSONPattern greedily matches the first object literal that
// mentions a "blocks" key. Models sometimes wrap the payload in prose even
// when told not to.
var embeddedJSONPattern = regexp.MustCompile(`(?s)\{.*"blocks".*\}`)

// ExtractText concatenates the markdown of every text block in document
// order, separated by blank lines. Returns "" for empty input.
func ExtractText(blocksList []Block) string {
	if len(blocksList) == 0 {
		return ""
	}
	var parts []string
	for _, b := range blocksList {
		if b.Type != TypeText {
			continue
		}
		if md, ok := b.Content["markdown"].(string); ok && md != "" {
			parts = append(parts, md)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Summarize produces a short textual stand-in for structured-only responses,
// one sentence per non-text block. Returns "" when nothing is summarizable.
func Summarize(blocksList []Block) string {
	var parts []string
	for _, b := range blocksList {
		switch b.Type {
		case TypeBookCard:
			title, _ := b.Content["title"].(string)
			author, _ := b.Content["author"].(string)
			parts = append(parts, fmt.Sprintf("I recommended %s by %s", title, author))
		case TypeBookList:
			count := 0
			if books, ok := b.Content["books"].([]any); ok {
				count = len(books)
			}
			parts = append(parts, fmt.Sprintf("I showed you %d book recommendations", count))
		case TypeBookSpotlight:
			title, _ := b.Content["title"].(string)
			parts = append(parts, fmt.Sprintf("I provided detailed information about %s", title))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}

// ExtractEmbeddedJSON returns the first substring that looks like a blocks
// document, verbatim, for re-parsing. Returns "" if none is found.
func ExtractEmbeddedJSON(text string) string {
	return embeddedJSONPattern.FindString(text)
}
