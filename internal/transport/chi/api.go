package chi

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed   ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeCatalogUnavailable ErrorResponseCode = "catalog_unavailable"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// VectorSearchRequest is the POST /vector-search body.
type VectorSearchRequest struct {
	Query    string  `json:"query"`
	Category *string `json:"category,omitempty"`
	Limit    *int    `json:"limit,omitempty"`
}

// VectorSearchParams are the GET /vector-search query parameters.
type VectorSearchParams struct {
	Query    string  `form:"query" json:"query"`
	Category *string `form:"category,omitempty" json:"category,omitempty"`
	Limit    *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// SearchResultItem is one ranked product.
type SearchResultItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
	Score    float64 `json:"score"`
}

// VectorSearchResponse mirrors a search outcome.
type VectorSearchResponse struct {
	Results         []SearchResultItem `json:"results"`
	BestScore       *float64           `json:"bestScore"`
	HasLowRelevance bool               `json:"hasLowRelevance"`
	IsTextFallback  bool               `json:"isTextFallback"`
	Category        *string            `json:"category"`
}

// ChatProfile is what the storefront knows about the shopper.
type ChatProfile struct {
	Name              string `json:"name"`
	PreferredCategory string `json:"preferredCategory"`
}

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message string       `json:"message"`
	Profile *ChatProfile `json:"profile,omitempty"`
}

// ChatResponse is the assistant reply. Search fields are present only when
// the message triggered a search.
type ChatResponse struct {
	ID              string             `json:"id"`
	Answer          string             `json:"answer"`
	Intent          string             `json:"intent"`
	Emotion         string             `json:"emotion"`
	Products        []SearchResultItem `json:"products,omitempty"`
	BestScore       *float64           `json:"bestScore,omitempty"`
	HasLowRelevance bool               `json:"hasLowRelevance,omitempty"`
	IsTextFallback  bool               `json:"isTextFallback,omitempty"`
	Category        string             `json:"category,omitempty"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
