package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// Query parameter limits.
const (
	// MaxTextLength is the maximum raw query length in bytes.
	MaxTextLength = 1024
	MaxLimit      = 50
)

// Query is a validated search request. It lives for one request only.
type Query struct {
	rawText  string
	category string
	limit    int
	explicit bool
}

// New validates search parameters. An empty or whitespace-only text is accepted:
// it yields an empty outcome rather than an error.
// limit <= 0 falls back to defaultLimit (domain.DefaultLimit when that is <= 0).
func New(rawText, category string, limit, defaultLimit int) (Query, error) {
	if len(rawText) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d bytes)", domain.ErrInvalidQuery, MaxTextLength)
	}
	if limit < 0 {
		return Query{}, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidQuery)
	}
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultLimit
	}
	explicit := limit > 0 && limit != defaultLimit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Query{
		rawText:  rawText,
		category: strings.TrimSpace(category),
		limit:    limit,
		explicit: explicit,
	}, nil
}

// RawText returns the text exactly as the user typed it.
func (q *Query) RawText() string { return q.rawText }

// Category returns the caller-supplied category, "" when none.
func (q *Query) Category() string { return q.category }

// Limit returns the maximum number of results.
func (q *Query) Limit() int { return q.limit }

// CacheKey derives the result cache key: the lowercased, trimmed raw text.
// Requests that pin a category or a non-default limit get a suffix so their
// outcomes never collide with the plain query. Text and category are escaped
// so user input cannot forge a suffix.
func (q *Query) CacheKey() string {
	key := keyEscaper.Replace(Key(q.rawText))
	if q.category != "" {
		key += "|category=" + keyEscaper.Replace(strings.ToLower(q.category))
	}
	if q.explicit {
		key += fmt.Sprintf("|limit=%d", q.limit)
	}
	return key
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`)

// Key is the canonical cache key for raw query text.
func Key(rawText string) string {
	return strings.ToLower(strings.TrimSpace(rawText))
}

// Normalized is the query after text normalization and category extraction.
type Normalized struct {
	Text             string
	DetectedCategory string
}
