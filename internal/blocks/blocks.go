// Package blocks defines the structured content vocabulary exchanged between
// the assistant and rendering clients, and the parsing/validation of LLM
// output against it.
package blocks

import (
	"encoding/json"
	"fmt"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

// Recognized block types.
const (
	TypeText          = "text"
	TypeBookCard      = "book_card"
	TypeBookList      = "book_list"
	TypeBookSpotlight = "book_spotlight"
	TypeImage         = "image"
)

var validTypes = map[string]bool{
	TypeText:          true,
	TypeBookCard:      true,
	TypeBookList:      true,
	TypeBookSpotlight: true,
	TypeImage:         true,
}

// Block is one typed unit of assistant-produced content. Content is kept as
// a string-keyed map; JSON is the only serialization boundary.
type Block struct {
	Type    string         `json:"type"`
	Content map[string]any `json:"content"`
}

// Document is the top-level container for one assistant turn.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// InvalidBlockTypeError reports a block whose type is outside the vocabulary.
type InvalidBlockTypeError struct {
	Type string
}

func (e *InvalidBlockTypeError) Error() string {
	return fmt.Sprintf("invalid block type: %s", e.Type)
}

// MalformedJSONError reports completion text that is not valid JSON.
type MalformedJSONError struct {
	Detail string
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("invalid JSON: %s", e.Detail)
}

// Validate checks every block's type against the recognized vocabulary.
// A document with zero blocks is valid.
func Validate(doc *Document) error {
	if doc == nil || len(doc.Blocks) == 0 {
		return nil
	}
	for _, b := range doc.Blocks {
		if !validTypes[b.Type] {
			return &InvalidBlockTypeError{Type: b.Type}
		}
	}
	return nil
}

// Parse deserializes jsonText into a Document, optionally validating the
// block types.
func Parse(jsonText string, validate bool) (*Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(jsonText), &doc); err != nil {
		return nil, &MalformedJSONError{Detail: err.Error()}
	}
	if validate {
		if err := Validate(&doc); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// TextBlock builds a text block wrapping the given markdown.
func TextBlock(markdown string) Block {
	return Block{
		Type:    TypeText,
		Content: map[string]any{"markdown": markdown},
	}
}

// BookCard builds a book_card block from a catalog entry.
func BookCard(book *domain.Book) Block {
	return Block{Type: TypeBookCard, Content: bookContent(book)}
}

// BookList builds a book_list block. Title may be empty.
func BookList(books []*domain.Book, title string) Block {
	items := make([]map[string]any, 0, len(books))
	for _, b := range books {
		items = append(items, bookContent(b))
	}
	content := map[string]any{"books": items}
	if title != "" {
		content["title"] = title
	}
	return Block{Type: TypeBookList, Content: content}
}

func bookContent(book *domain.Book) map[string]any {
	genres := book.Genres
	if genres == nil {
		genres = []string{}
	}
	return map[string]any{
		"isbn":         book.ISBN,
		"title":        book.Title,
		"author":       book.Author,
		"rating":       book.Rating,
		"review_count": book.ReviewCount,
		"genres":       genres,
		"price":        book.Price,
		"image_url":    book.ImageURL,
		"description":  book.Description,
	}
}
