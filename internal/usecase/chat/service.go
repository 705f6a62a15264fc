// Package chat answers shopper messages, running product searches when the
// message asks for one.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/textnorm"
)

// Profile is what the storefront knows about the shopper.
type Profile struct {
	Name              string
	PreferredCategory string
}

// Reply is the assistant's answer to one message.
type Reply struct {
	ID       uuid.UUID
	Answer   string
	Intent   Intent
	Emotion  Emotion
	Products []outcome.ScoredResult
	// Outcome is set when the message triggered a search.
	Outcome *outcome.Outcome
}

// Service is the chat orchestrator.
type Service struct {
	search   Searcher
	detector CategoryDetector
	newID    func() uuid.UUID
}

// New creates a chat service.
func New(search Searcher, detector CategoryDetector) *Service {
	return &Service{search: search, detector: detector, newID: uuid.New}
}

// SendMessage classifies text and answers it. Product searches and
// recommendations go through the cached search; the other intents are
// answered from templates.
func (s *Service) SendMessage(ctx context.Context, text string, profile Profile) (Reply, error) {
	msg, ok := textnorm.Normalize(text)
	if !ok {
		return Reply{}, fmt.Errorf("%w: message is required", domain.ErrInvalidQuery)
	}

	named := s.detector.Extract(msg)
	intent := ClassifyIntent(msg, named != "")
	emotion := DetectEmotion(msg)

	reply := Reply{ID: s.newID(), Intent: intent, Emotion: emotion}

	switch intent {
	case IntentProductSearch, IntentRecommendation:
		category := ""
		if intent == IntentRecommendation && named == "" {
			category = strings.TrimSpace(profile.PreferredCategory)
		}
		q, err := query.New(msg, category, 0, s.search.DefaultLimit())
		if err != nil {
			return Reply{}, fmt.Errorf("build query: %w", err)
		}
		out, err := s.search.SearchCached(ctx, q)
		if err != nil {
			return Reply{}, fmt.Errorf("search: %w", err)
		}
		reply.Outcome = &out
		reply.Products = out.Results
		reply.Answer = searchAnswer(intent, emotion, out)
	case IntentThanks:
		reply.Answer = "Avec plaisir ! N'hésitez pas si vous cherchez autre chose."
	case IntentGreeting:
		reply.Answer = greetingAnswer(profile.Name)
	default:
		reply.Answer = withTone(emotion,
			"Je n'ai pas bien compris. Pouvez-vous préciser le produit que vous recherchez ?")
	}

	metrics.ChatRepliesTotal.WithLabelValues(string(intent), string(emotion)).Inc()
	logger.FromContext(ctx).Debug("Chat reply",
		zap.String("reply_id", reply.ID.String()),
		zap.String("intent", string(intent)),
		zap.String("emotion", string(emotion)),
		zap.Int("products", len(reply.Products)),
	)
	return reply, nil
}

func greetingAnswer(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Bonjour ! Dites-moi ce que vous cherchez et je vous propose des produits."
	}
	return fmt.Sprintf("Bonjour %s ! Dites-moi ce que vous cherchez et je vous propose des produits.", name)
}

func searchAnswer(intent Intent, emotion Emotion, out outcome.Outcome) string {
	in := ""
	if out.Category != "" {
		in = " dans la catégorie " + out.Category
	}

	if out.IsEmpty() {
		return withTone(emotion, "Désolé, je n'ai trouvé aucun produit correspondant à votre demande"+in+".")
	}

	n := len(out.Results)
	var b strings.Builder
	switch {
	case out.HasLowRelevance:
		fmt.Fprintf(&b, "Je n'ai pas trouvé de correspondance exacte, mais voici %s%s qui %s vous intéresser.",
			products(n), in, agree(n, "pourrait", "pourraient"))
	case intent == IntentRecommendation:
		fmt.Fprintf(&b, "Voici mes recommandations%s : %s %s pour vous.",
			in, products(n), agree(n, "sélectionné", "sélectionnés"))
	default:
		fmt.Fprintf(&b, "Voici %s%s qui %s à votre recherche.", products(n), in, agree(n, "correspond", "correspondent"))
	}
	if out.IsTextFallback {
		b.WriteString(" (Résultats obtenus par recherche textuelle.)")
	}
	return withTone(emotion, b.String())
}

func withTone(emotion Emotion, answer string) string {
	if emotion == EmotionNegative {
		return "Je suis désolé pour ce désagrément. " + answer
	}
	return answer
}

func products(n int) string {
	if n == 1 {
		return "1 produit"
	}
	return fmt.Sprintf("%d produits", n)
}

func agree(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
