package domain

// KeyPrefix namespaces every key this service writes to the shared key-value store.
const KeyPrefix = "shopsearch:"

// Search tuning defaults. All of them are overridable from config.
const (
	// DefaultLimit is the number of results returned when a request gives none.
	DefaultLimit = 8
	// DefaultRelevanceThreshold flags outcomes whose best score is below it as low relevance.
	DefaultRelevanceThreshold = 0.75
	// DefaultMinSemanticScore drops semantic candidates scoring below it.
	DefaultMinSemanticScore = 0.35
	// DefaultResultTTLSec is the lifetime of a cached search outcome.
	DefaultResultTTLSec = 300
	// DefaultResultCacheEntries bounds the result cache.
	DefaultResultCacheEntries = 1000
)
