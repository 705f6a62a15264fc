package chat

import (
	"strings"
	"unicode"
)

// Intent is what the shopper wants from a message.
type Intent string

// Intents, in classification priority order.
const (
	IntentRecommendation Intent = "recommendation"
	IntentProductSearch  Intent = "product_search"
	IntentThanks         Intent = "thanks"
	IntentGreeting       Intent = "greeting"
	IntentUnknown        Intent = "unknown"
)

// Emotion is the tone detected in a message.
type Emotion string

// Emotions.
const (
	EmotionPositive Emotion = "positive"
	EmotionNegative Emotion = "negative"
	EmotionNeutral  Emotion = "neutral"
)

// Stems match as token prefixes ("recommand" matches "recommandez").
var (
	recommendationStems = []string{
		"recommand", "conseil", "sugg", "idée", "idee", "offrir", "cadeau", "inspir", "recommend",
	}
	searchStems = []string{
		"cherch", "veux", "voudr", "besoin", "trouv", "achet", "montr", "avez", "prix", "dispo",
		"look", "want", "buy",
	}
	thanksStems    = []string{"merci", "thank", "thx"}
	greetingTokens = map[string]bool{
		"bonjour": true, "bonsoir": true, "salut": true, "coucou": true,
		"hello": true, "hey": true, "hi": true,
	}

	positiveStems = []string{
		"super", "génial", "genial", "parfait", "top", "ador", "content", "ravi",
		"excellent", "cool", "magnifique", "bravo", "great", "love",
	}
	negativeStems = []string{
		"nul", "déçu", "decu", "déception", "mauvais", "énerv", "enerv", "horrible", "problème",
		"probleme", "triste", "marre", "fâché", "fache", "arnaque", "pire", "bad", "hate",
	}
	// negators flip the polarity of the next token: "pas content" is negative.
	negators = map[string]bool{"pas": true, "plus": true, "jamais": true, "not": true, "never": true}
)

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasStem(tok string, stems []string) bool {
	for _, s := range stems {
		if strings.HasPrefix(tok, s) {
			return true
		}
	}
	return false
}

func anyStem(tokens []string, stems []string) bool {
	for _, tok := range tokens {
		if hasStem(tok, stems) {
			return true
		}
	}
	return false
}

// ClassifyIntent picks the intent of a message. namesCategory reports whether
// the message mentions a known product category, which makes it a search.
func ClassifyIntent(text string, namesCategory bool) Intent {
	tokens := tokenize(text)
	switch {
	case anyStem(tokens, recommendationStems):
		return IntentRecommendation
	case namesCategory || anyStem(tokens, searchStems):
		return IntentProductSearch
	case anyStem(tokens, thanksStems):
		return IntentThanks
	}
	for _, tok := range tokens {
		if greetingTokens[tok] {
			return IntentGreeting
		}
	}
	return IntentUnknown
}

// DetectEmotion scores positive and negative words; a preceding negator flips a word.
func DetectEmotion(text string) Emotion {
	tokens := tokenize(text)
	score := 0
	for i, tok := range tokens {
		polarity := 0
		switch {
		case hasStem(tok, negativeStems):
			polarity = -1
		case hasStem(tok, positiveStems) || hasStem(tok, thanksStems):
			polarity = 1
		default:
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			polarity = -polarity
		}
		score += polarity
	}
	switch {
	case score > 0:
		return EmotionPositive
	case score < 0:
		return EmotionNegative
	default:
		return EmotionNeutral
	}
}
