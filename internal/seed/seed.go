// Package seed populates the catalog with deterministic sample data for
// local development.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/repository"
)

var genres = []string{
	"Fantasy", "Science Fiction", "Mystery", "Thriller", "Romance",
	"Literary Fiction", "Historical Fiction", "Young Adult", "Horror",
	"Non-Fiction", "Biography", "Self-Help", "Philosophy", "Psychology",
	"History", "Science", "Technology", "Poetry", "Humor", "Travel",
	"Crime", "Adventure", "Dystopian", "Magical Realism", "Classic", "Memoir",
}

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael",
	"Linda", "William", "Elizabeth", "Haruki", "Yuki", "Akiko", "Kenji",
	"Gabriel", "Maria", "Carlos", "Ana", "Sofia", "Pierre", "Marie",
	"Sophie", "Hans", "Emma", "Giovanni", "Lucia",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Garcia", "Miller", "Davis",
	"Wilson", "Anderson", "Taylor", "Lee", "Thompson", "Murakami", "Tanaka",
	"Suzuki", "Borges", "Allende", "Neruda", "Eco", "Calvino", "Ferrante",
	"Larsson", "Houellebecq",
}

var publishers = []string{
	"Penguin Random House", "HarperCollins", "Macmillan", "Simon & Schuster",
	"Hachette Livre", "Scholastic", "Oxford University Press", "Norton",
	"Bloomsbury", "Faber & Faber", "Vintage", "Knopf", "Kodansha",
}

var titlePatterns = []string{
	"The %s of %s", "A %s in %s", "%s and %s", "Beyond the %s",
	"The Last %s", "%s Under the %s", "Letters from %s", "The %s Keeper",
	"%s's Journey", "Finding %s", "The Art of %s", "In Search of %s",
	"The %s Paradox", "%s Rising", "Chronicles of %s", "Echoes of %s",
}

var titleWords = []string{
	"Shadow", "Light", "Dream", "Memory", "Time", "Love", "War", "Peace",
	"Journey", "Secret", "Truth", "Destiny", "Hope", "Courage", "Wisdom",
	"Darkness", "Dawn", "Storm", "Silence", "Heart", "Soul", "Fire",
	"Water", "Star", "Moon", "Night", "Garden", "Forest", "Mountain",
	"Ocean", "River", "Island", "Mirror", "Bridge",
}

var reviewPhrases = []string{
	"Couldn't put it down.",
	"A slow start but a rewarding finish.",
	"Beautifully written and deeply moving.",
	"Not what I expected, in a good way.",
	"The characters stayed with me for weeks.",
	"A bit overlong, but worth the time.",
	"An instant favorite.",
}

// Run populates the catalog with count deterministic sample books, reviews,
// and pairwise similarities. Existing ISBNs are skipped.
func Run(books *repository.BookRepository, count int, logger *zap.Logger) error {
	rng := rand.New(rand.NewSource(12345))
	created := make([]*domain.Book, 0, count)

	for i := 0; i < count; i++ {
		book := generateBook(rng, i)
		if err := books.Create(book); err != nil {
			return fmt.Errorf("seed book %s: %w", book.ISBN, err)
		}
		if book.ID == 0 {
			continue // already present
		}
		created = append(created, book)

		for r := 0; r < rng.Intn(4); r++ {
			review := &domain.Review{
				BookID:  book.ID,
				Rating:  1 + rng.Intn(5),
				Content: reviewPhrases[rng.Intn(len(reviewPhrases))],
			}
			if err := books.CreateReview(review); err != nil {
				return fmt.Errorf("seed review for %s: %w", book.ISBN, err)
			}
		}
	}

	if err := linkSimilarities(books, created); err != nil {
		return err
	}

	logger.Info("catalog seeded", zap.Int("books", len(created)))
	return nil
}

func generateBook(rng *rand.Rand, index int) *domain.Book {
	bookGenres := pickGenres(rng)
	published := time.Now().AddDate(0, -rng.Intn(120), -rng.Intn(28))

	return &domain.Book{
		ISBN:               generateISBN(index),
		Title:              generateTitle(rng),
		Author:             firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
		Publisher:          publishers[rng.Intn(len(publishers))],
		Description:        fmt.Sprintf("A %s story exploring themes of %s.", bookGenres[0], titleWords[rng.Intn(len(titleWords))]),
		Price:              float64(599+rng.Intn(2901)) / 100,
		Genres:             bookGenres,
		Rating:             float64(20+rng.Intn(31)) / 10,
		PageCount:          100 + rng.Intn(701),
		Language:           "en",
		PublishedAt:        published,
		AvailabilityStatus: "available",
		IsTrending:         index%10 == 0,
		TrendingScore:      trendingScore(rng, index),
	}
}

func generateISBN(index int) string {
	prefix := "978"
	if index >= 500 {
		prefix = "979"
	}
	return fmt.Sprintf("%s-%d-%d-%d-%d", prefix, index%10, 10000+index/10, 10000+index, index%10)
}

func generateTitle(rng *rand.Rand) string {
	pattern := titlePatterns[rng.Intn(len(titlePatterns))]
	first := titleWords[rng.Intn(len(titleWords))]
	second := titleWords[rng.Intn(len(titleWords))]
	if countVerbs(pattern) == 2 {
		return fmt.Sprintf(pattern, first, second)
	}
	return fmt.Sprintf(pattern, first)
}

func countVerbs(pattern string) int {
	count := 0
	for i := 0; i+1 < len(pattern); i++ {
		if pattern[i] == '%' && pattern[i+1] == 's' {
			count++
		}
	}
	return count
}

func pickGenres(rng *rand.Rand) []string {
	n := 1 + rng.Intn(3)
	picked := make([]string, 0, n)
	seen := map[string]bool{}
	for len(picked) < n {
		g := genres[rng.Intn(len(genres))]
		if !seen[g] {
			seen[g] = true
			picked = append(picked, g)
		}
	}
	return picked
}

func trendingScore(rng *rand.Rand, index int) int {
	if index%10 != 0 {
		return 0
	}
	return 10 + rng.Intn(90)
}

// linkSimilarities stores bidirectional similarity scores for neighboring
// books that share at least one genre: genre overlap plus a same-author
// bonus, clamped to [0, 1].
func linkSimilarities(books *repository.BookRepository, created []*domain.Book) error {
	for i, book := range created {
		for j := i + 1; j < len(created) && j < i+20; j++ {
			other := created[j]
			score := similarityScore(book, other)
			if score <= 0 {
				continue
			}
			if err := books.UpsertSimilarity(book.ID, other.ID, score); err != nil {
				return fmt.Errorf("seed similarity: %w", err)
			}
			if err := books.UpsertSimilarity(other.ID, book.ID, score); err != nil {
				return fmt.Errorf("seed similarity: %w", err)
			}
		}
	}
	return nil
}

func similarityScore(a, b *domain.Book) float64 {
	common := 0
	seen := map[string]bool{}
	for _, g := range a.Genres {
		seen[g] = true
	}
	for _, g := range b.Genres {
		if seen[g] {
			common++
		}
	}
	if common == 0 {
		return 0
	}

	total := len(a.Genres) + len(b.Genres) - common
	score := float64(common) / float64(total)
	if a.Author == b.Author {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}
	return float64(int(score*100)) / 100
}
