package domain

import "time"

// Book represents one catalog entry
type Book struct {
	ID                 int64     `json:"id"`
	ISBN               string    `json:"isbn"`
	Title              string    `json:"title"`
	Author             string    `json:"author"`
	Publisher          string    `json:"publisher,omitempty"`
	Description        string    `json:"description,omitempty"`
	Price              float64   `json:"price"`
	Genres             []string  `json:"genres"`
	Rating             float64   `json:"rating"`
	ReviewCount        int       `json:"review_count"`
	PageCount          int       `json:"page_count,omitempty"`
	Language           string    `json:"language,omitempty"`
	PublishedAt        time.Time `json:"published_at"`
	AvailabilityStatus string    `json:"availability_status,omitempty"`
	IsTrending         bool      `json:"is_trending"`
	TrendingScore      int       `json:"trending_score"`
	ImageURL           string    `json:"image_url,omitempty"`
	ThumbnailURL       string    `json:"thumbnail_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// Review represents one reader review of a book
type Review struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BookSummary is the uniform short shape returned by catalog search tools.
type BookSummary struct {
	ISBN        string   `json:"isbn"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Genres      []string `json:"genres"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Price       float64  `json:"price"`
	PublishedAt string   `json:"published_at"`
}

// ReviewSnippet is the abbreviated review shape included in book detail.
type ReviewSnippet struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// BookDetail extends BookSummary with the full detail field set.
type BookDetail struct {
	BookSummary
	Description        string          `json:"description"`
	Publisher          string          `json:"publisher"`
	PageCount          int             `json:"page_count"`
	Language           string          `json:"language"`
	AvailabilityStatus string          `json:"availability_status"`
	SimilarBooksCount  int             `json:"similar_books_count"`
	Reviews            []ReviewSnippet `json:"reviews"`
}

// Summary projects the book into the uniform tool response shape.
func (b *Book) Summary() BookSummary {
	genres := b.Genres
	if genres == nil {
		genres = []string{}
	}
	published := ""
	if !b.PublishedAt.IsZero() {
		published = b.PublishedAt.Format("2006-01-02")
	}
	return BookSummary{
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Genres:      genres,
		Rating:      b.Rating,
		ReviewCount: b.ReviewCount,
		Price:       b.Price,
		PublishedAt: published,
	}
}

// Detail projects the book into the detailed tool response shape. At most
// three reviews are included.
func (b *Book) Detail(similarCount int, reviews []Review) BookDetail {
	snippets := make([]ReviewSnippet, 0, 3)
	for _, r := range reviews {
		if len(snippets) == 3 {
			break
		}
		snippets = append(snippets, ReviewSnippet{Rating: r.Rating, Content: r.Content})
	}
	return BookDetail{
		BookSummary:        b.Summary(),
		Description:        b.Description,
		Publisher:          b.Publisher,
		PageCount:          b.PageCount,
		Language:           b.Language,
		AvailabilityStatus: b.AvailabilityStatus,
		SimilarBooksCount:  similarCount,
		Reviews:            snippets,
	}
}
