package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"soul-feed/internal/domain"
	"soul-feed/internal/llm"
)

const testFlagship = "0xflagship"

func flagshipProfile() *domain.NFTProfile {
	return &domain.NFTProfile{
		ID:              "prof-1",
		ContractAddress: testFlagship,
		TokenID:         "42",
		Name:            "Citizen #42",
		Race:            domain.RaceBot,
		SoulPrompt:      "You are citizen #42 of Noctis City, a Bot.",
		SpeechStyle:     "clipped",
	}
}

func TestGeneratePost_LayeredPathUsesSoulPromptAndJSONContract(t *testing.T) {
	mock := &llm.MockClient{Response: `{"type":"original","reply_to":null,"content":"The foundry lights flickered twice.","mood":"uneasy"}`}
	svc := NewPostService(mock, testFlagship)

	post, err := svc.GeneratePost(context.Background(), flagshipProfile(), nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Type != domain.PostTypeOriginal || post.Mood != "uneasy" {
		t.Fatalf("unexpected post: %+v", post)
	}

	req := mock.Requests[0]
	if !strings.Contains(req.SystemMessage, "citizen #42 of Noctis City") {
		t.Fatal("soul prompt missing from system layer")
	}
	if !strings.Contains(req.SystemMessage, "Noctis City lives under a sealed dome") {
		t.Fatal("world lore missing from system layer")
	}
}

func TestGeneratePost_ReplyTargetMustComeFromOfferedPool(t *testing.T) {
	now := time.Now().UTC()
	candidates := []domain.FeedPost{
		{Post: domain.Post{ID: "p1", ProfileID: "o1", Content: "hey", CreatedAt: now}, AuthorName: "A", AuthorRace: domain.RaceHuman},
		{Post: domain.Post{ID: "p2", ProfileID: "o2", Content: "yo", CreatedAt: now}, AuthorName: "B", AuthorRace: domain.RaceSkull},
	}

	mock := &llm.MockClient{Response: `{"type":"reply","reply_to":"p2","content":"I heard it from the tunnels."}`}
	svc := NewPostService(mock, testFlagship)
	post, err := svc.GeneratePost(context.Background(), flagshipProfile(), nil, nil, candidates, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Type != domain.PostTypeReply || post.ReplyToPostID == nil || *post.ReplyToPostID != "p2" {
		t.Fatalf("valid reply rejected: %+v", post)
	}

	mock = &llm.MockClient{Response: `{"type":"reply","reply_to":"ghost","content":"Answering nobody."}`}
	svc = NewPostService(mock, testFlagship)
	post, err = svc.GeneratePost(context.Background(), flagshipProfile(), nil, nil, candidates, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Type != domain.PostTypeOriginal || post.ReplyToPostID != nil {
		t.Fatalf("fabricated target survived: %+v", post)
	}
}

func TestGeneratePost_CandidatePoolTruncatedAtTwenty(t *testing.T) {
	now := time.Now().UTC()
	var candidates []domain.FeedPost
	for i := 0; i < 25; i++ {
		candidates = append(candidates, domain.FeedPost{
			Post:       domain.Post{ID: fmt.Sprintf("p%d", i), ProfileID: "o", Content: "x", CreatedAt: now},
			AuthorName: "A",
		})
	}

	// p24 existe pero queda fuera del prompt: no es target valido.
	mock := &llm.MockClient{Response: `{"type":"reply","reply_to":"p24","content":"late pick"}`}
	svc := NewPostService(mock, testFlagship)
	post, err := svc.GeneratePost(context.Background(), flagshipProfile(), nil, nil, candidates, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Type != domain.PostTypeOriginal {
		t.Fatalf("target outside offered window accepted: %+v", post)
	}
	if got := strings.Count(mock.Requests[0].Messages[0].Content, "[id:"); got != 20 {
		t.Fatalf("expected 20 candidates in prompt, got %d", got)
	}
}

func TestGeneratePost_LegacyPathForNonFlagship(t *testing.T) {
	mock := &llm.MockClient{Response: `"a plain text post from a legacy character"`}
	svc := NewPostService(mock, testFlagship)

	profile := &domain.NFTProfile{
		ID:              "prof-9",
		ContractAddress: "0xother",
		Name:            "Legacy #9",
		Traits:          []domain.NormalizedTrait{{TraitType: "Hat", Value: "Cap"}},
	}
	post, err := svc.GeneratePost(context.Background(), profile, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Type != domain.PostTypeOriginal || post.ReplyToPostID != nil {
		t.Fatalf("legacy must always be original: %+v", post)
	}
	if post.Content != "a plain text post from a legacy character" {
		t.Fatalf("quote stripping failed: %q", post.Content)
	}
	if mock.Requests[0].SystemMessage != "" {
		t.Fatal("legacy path should not carry the layered system message")
	}
}

func TestGeneratePost_FlagshipWithoutSoulFallsToLegacy(t *testing.T) {
	mock := &llm.MockClient{Response: "plain"}
	svc := NewPostService(mock, testFlagship)
	profile := &domain.NFTProfile{ID: "p", ContractAddress: testFlagship, Name: "N"}

	if _, err := svc.GeneratePost(context.Background(), profile, nil, nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.Requests[0].SystemMessage != "" {
		t.Fatal("layered prompt used without a soul prompt")
	}
}

func TestGenerateFirstPost_DebutRules(t *testing.T) {
	mock := &llm.MockClient{Response: `{"type":"original","reply_to":null,"content":"The ration queue smells like ozone again.","mood":"dry"}`}
	svc := NewPostService(mock, testFlagship)

	post, err := svc.GenerateFirstPost(context.Background(), flagshipProfile(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Type != domain.PostTypeOriginal {
		t.Fatalf("first post must be original: %+v", post)
	}
	prompt := mock.Requests[0].Messages[0].Content
	if !strings.Contains(prompt, "first post") || !strings.Contains(prompt, "Do NOT announce an arrival") {
		t.Fatalf("debut rules missing from prompt: %q", prompt)
	}
}

func TestGenerateFirstPost_ReplyFromModelDegradesToOriginal(t *testing.T) {
	// Sin pool de candidatos, un reply inventado en el debut queda original.
	mock := &llm.MockClient{Response: `{"type":"reply","reply_to":"x","content":"still a debut"}`}
	svc := NewPostService(mock, testFlagship)
	post, err := svc.GenerateFirstPost(context.Background(), flagshipProfile(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Type != domain.PostTypeOriginal || post.ReplyToPostID != nil {
		t.Fatalf("debut reply not degraded: %+v", post)
	}
}
