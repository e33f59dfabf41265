package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soul-feed/internal/domain"
	"soul-feed/internal/llm"
)

// PostService genera posts en la voz de un personaje. Los perfiles flagship
// con alma usan la arquitectura en capas; el resto cae al camino legacy de
// un solo prompt que siempre produce originales.
type PostService struct {
	llmClient        llm.Client
	flagshipContract string
	now              func() time.Time
}

func NewPostService(llmClient llm.Client, flagshipContract string) *PostService {
	return &PostService{
		llmClient:        llmClient,
		flagshipContract: strings.ToLower(flagshipContract),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *PostService) isFlagship(profile *domain.NFTProfile) bool {
	return strings.ToLower(profile.ContractAddress) == s.flagshipContract
}

// GeneratePost produce el siguiente post del personaje. candidates es el pool
// de posts ajenos que el modelo puede responder; thread es el contexto de
// hilo ya resuelto si el caller decidio intentar una respuesta. La salida
// respeta el invariante de GeneratedPost: nunca un reply con target fuera
// del pool.
func (s *PostService) GeneratePost(
	ctx context.Context,
	profile *domain.NFTProfile,
	universe *domain.Universe,
	ownPosts []domain.Post,
	candidates []domain.FeedPost,
	thread []domain.Post,
) (domain.GeneratedPost, error) {
	if !s.isFlagship(profile) || !profile.HasSoul() {
		return s.generateLegacy(ctx, profile, universe)
	}

	if len(candidates) > maxCandidatesInPrompt {
		candidates = candidates[:maxCandidatesInPrompt]
	}

	raw, err := s.llmClient.Complete(ctx, llm.CompletionRequest{
		SystemMessage: buildPostSystemMessage(universe, profile.SoulPrompt),
		Messages: []llm.Message{
			{Role: "user", Content: buildPostUserMessage(ownPosts, candidates, thread, s.now())},
		},
		MaxTokens:   500,
		Temperature: 0.95,
	})
	if err != nil {
		return domain.GeneratedPost{}, fmt.Errorf("post generation call: %w", err)
	}

	// Solo los ids realmente ofrecidos en el prompt son targets validos.
	candidateIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		candidateIDs = append(candidateIDs, c.ID)
	}

	post, ok := ParsePostResponse(raw, candidateIDs)
	if !ok {
		return domain.GeneratedPost{}, fmt.Errorf("post generation produced no content")
	}
	return post, nil
}

// GenerateFirstPost produce el post de debut con la variante de prompt
// dedicada: sin apertura templada de "recien llegado".
func (s *PostService) GenerateFirstPost(ctx context.Context, profile *domain.NFTProfile, universe *domain.Universe) (domain.GeneratedPost, error) {
	if !s.isFlagship(profile) || !profile.HasSoul() {
		return s.generateLegacy(ctx, profile, universe)
	}

	raw, err := s.llmClient.Complete(ctx, llm.CompletionRequest{
		SystemMessage: buildPostSystemMessage(universe, profile.SoulPrompt),
		Messages: []llm.Message{
			{Role: "user", Content: buildFirstPostUserMessage(profile.Name)},
		},
		MaxTokens:   400,
		Temperature: 1.0,
	})
	if err != nil {
		return domain.GeneratedPost{}, fmt.Errorf("first post call: %w", err)
	}

	post, ok := ParsePostResponse(raw, nil)
	if !ok {
		return domain.GeneratedPost{}, fmt.Errorf("first post produced no content")
	}
	return post, nil
}

func (s *PostService) generateLegacy(ctx context.Context, profile *domain.NFTProfile, universe *domain.Universe) (domain.GeneratedPost, error) {
	raw, err := s.llmClient.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "user", Content: buildLegacyPrompt(profile, universe)},
		},
		MaxTokens:   400,
		Temperature: 0.9,
	})
	if err != nil {
		return domain.GeneratedPost{}, fmt.Errorf("legacy post call: %w", err)
	}

	content := stripWrappingQuotes(cleanModelText(raw))
	if content == "" {
		return domain.GeneratedPost{}, fmt.Errorf("legacy post produced no content")
	}
	return domain.GeneratedPost{Type: domain.PostTypeOriginal, Content: content}, nil
}
