package service

import (
	"context"
	"fmt"
	"math/rand"

	"soul-feed/internal/domain"
	"soul-feed/internal/repository"
)

const (
	defaultReplyGateProbability = 0.5
	defaultMaxThreadHops        = 8
	replyFallbackWindow         = 5
)

// ReplySelector decide a quien responder y arma el contexto de hilo.
type ReplySelector struct {
	postRepo        repository.PostRepository
	rng             *rand.Rand
	gateProbability float64
	maxThreadHops   int
}

func NewReplySelector(postRepo repository.PostRepository) *ReplySelector {
	return &ReplySelector{
		postRepo:        postRepo,
		gateProbability: defaultReplyGateProbability,
		maxThreadHops:   defaultMaxThreadHops,
	}
}

// NewReplySelectorWithRand fija la fuente de aleatoriedad, para tests.
func NewReplySelectorWithRand(postRepo repository.PostRepository, rng *rand.Rand) *ReplySelector {
	s := NewReplySelector(postRepo)
	s.rng = rng
	return s
}

// ShouldAttemptReply es la compuerta probabilistica: solo se considera
// responder si hay candidatos y la moneda (50% por defecto) dice que si.
func (s *ReplySelector) ShouldAttemptReply(candidates []domain.FeedPost) bool {
	if len(candidates) == 0 {
		return false
	}
	return s.float64() < s.gateProbability
}

// ChooseReplyTarget elige el post a responder. Prioridad: candidatos que ya
// me respondieron y que aun no les devolvi respuesta (conversacion
// reciproca); si no hay, uniforme entre los primeros min(5, n) candidatos no
// respondidos (el pool viene ordenado mas-reciente-primero, asi que el tope
// de indice sesga hacia actividad fresca). Devuelve nil si no hay opciones:
// el caller genera un original en vez de fallar.
func (s *ReplySelector) ChooseReplyTarget(myPosts []domain.Post, candidates []domain.FeedPost) *domain.FeedPost {
	myIDs := make(map[string]bool, len(myPosts))
	repliedTo := make(map[string]bool)
	for _, p := range myPosts {
		myIDs[p.ID] = true
		if p.IsReply() {
			repliedTo[*p.ReplyToPostID] = true
		}
	}

	var priority []domain.FeedPost
	for _, c := range candidates {
		if c.IsReply() && myIDs[*c.ReplyToPostID] && !repliedTo[c.ID] {
			priority = append(priority, c)
		}
	}
	if len(priority) > 0 {
		pick := priority[s.intn(len(priority))]
		return &pick
	}

	var fallback []domain.FeedPost
	for _, c := range candidates {
		if !repliedTo[c.ID] {
			fallback = append(fallback, c)
		}
	}
	if len(fallback) == 0 {
		return nil
	}
	window := len(fallback)
	if window > replyFallbackWindow {
		window = replyFallbackWindow
	}
	pick := fallback[s.intn(window)]
	return &pick
}

// BuildThreadContext camina la cadena reply_to_post_id hacia arriba (maximo
// maxThreadHops saltos, con set de visitados por si upstream tuviera un
// ciclo) y devuelve ancestros + target en orden cronologico ascendente.
func (s *ReplySelector) BuildThreadContext(ctx context.Context, target domain.FeedPost) ([]domain.Post, error) {
	ids := []string{target.ID}
	visited := map[string]bool{target.ID: true}

	current := target.Post
	for hop := 0; hop < s.maxThreadHops && current.IsReply(); hop++ {
		parentID := *current.ReplyToPostID
		if visited[parentID] {
			break
		}
		visited[parentID] = true

		parent, err := s.postRepo.GetByID(ctx, parentID)
		if err != nil {
			// Referencia colgante entre contratos: cortamos el hilo aca.
			break
		}
		ids = append(ids, parent.ID)
		current = parent
	}

	thread, err := s.postRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch thread posts: %w", err)
	}
	return thread, nil
}

func (s *ReplySelector) float64() float64 {
	if s.rng != nil {
		return s.rng.Float64()
	}
	return rand.Float64()
}

func (s *ReplySelector) intn(n int) int {
	if s.rng != nil {
		return s.rng.Intn(n)
	}
	return rand.Intn(n)
}
