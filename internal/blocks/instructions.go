package blocks

// FormatInstructions returns the prompt fragment mandating that the entire
// reply be a single JSON document of the block schema shape.
func FormatInstructions() string {
	return `IMPORTANT: You MUST respond with ONLY a JSON object. Do not include any text before or after the JSON.

The JSON object MUST contain a "blocks" array as the top-level property.

Block types you MUST use:
1. "text" blocks: For ALL explanatory text, context, greetings, and transitions
   - content MUST have a "markdown" property with your text
2. "book_card" blocks: For individual book recommendations
   - content MUST include: isbn, title, author, rating, genres (array), price, image_url, description
3. "book_list" blocks: For multiple related books (prefer this whenever recommending 2 or more books)
   - content MUST have: title (string) and books (array of book objects)
4. "book_spotlight" blocks: For an in-depth look at a single book
   - content MUST include: isbn, title, author, rating, genres, price, image_url, description,
     extended_description, key_themes (array), why_recommended, similar_books (array of titles)

REQUIRED: Always include text blocks to make your response conversational:
- Start with a text block to greet or acknowledge the user's request
- Add text blocks between book recommendations to provide context
- End with a text block to conclude or ask if they need more help

Example of a complete response:
{
  "blocks": [
    {
      "type": "text",
      "content": {
        "markdown": "I'd be happy to recommend some mystery novels for you!"
      }
    },
    {
      "type": "book_card",
      "content": {
        "isbn": "978-0-00-000000-0",
        "title": "The Mystery Book",
        "author": "John Doe",
        "rating": 4.5,
        "genres": ["Mystery", "Thriller"],
        "price": 19.99,
        "image_url": "https://example.com/book.jpg",
        "description": "A thrilling mystery novel"
      }
    },
    {
      "type": "text",
      "content": {
        "markdown": "This book is perfect for fans of psychological thrillers. Would you like more recommendations?"
      }
    }
  ]
}`
}
