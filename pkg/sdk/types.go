package shopsearch

// Product is a catalog entry. Embedding may be empty: the client computes
// missing embeddings when products are passed with WithProducts.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	ImageURL    string
	Embedding   []float32
}

// Result is a product with its relevance score in [0,1].
type Result struct {
	Product Product
	Score   float64
}

// SearchResult is the outcome of a search. Degradations are reported as
// flags, never as errors.
type SearchResult struct {
	Results []Result
	// BestScore is nil when there are no results.
	BestScore       *float64
	HasLowRelevance bool
	IsTextFallback  bool
	Category        string
}

// Profile is what the storefront knows about the shopper.
type Profile struct {
	Name              string
	PreferredCategory string
}

// ChatReply is the assistant's answer to one message.
type ChatReply struct {
	ID       string
	Answer   string
	Intent   string
	Emotion  string
	Products []Result
	// Search is set when the message triggered a product search.
	Search *SearchResult
}

// SearchOption narrows a single search.
type SearchOption func(*searchParams)

type searchParams struct {
	category string
	limit    int
}

// InCategory restricts results to a catalog category or category group name.
func InCategory(category string) SearchOption {
	return func(p *searchParams) { p.category = category }
}

// Limit caps the number of results. Zero uses the client default.
func Limit(n int) SearchOption {
	return func(p *searchParams) { p.limit = n }
}
