package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"soul-feed/internal/domain"
	"soul-feed/internal/llm"
)

func TestGenerateSoulPrompt_ParsesLabeledSections(t *testing.T) {
	mock := &llm.MockClient{Response: "PERSONALITY: Broods over old foundry debts and collects broken clocks.\nSPEECH STYLE: Short sentences, machine metaphors."}
	svc := NewSoulServiceWithRand(mock, rand.New(rand.NewSource(3)))

	result, err := svc.GenerateSoulPrompt(context.Background(), "42", []domain.NormalizedTrait{
		{TraitType: "Race", Value: "Robot"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Race != domain.RaceBot {
		t.Fatalf("expected Bot race, got %q", result.Race)
	}
	if result.SpeechStyle != "Short sentences, machine metaphors." {
		t.Fatalf("speech style not extracted: %q", result.SpeechStyle)
	}
	if !strings.Contains(result.SoulPrompt, "Broods over old foundry debts") {
		t.Fatalf("personality missing from soul prompt: %q", result.SoulPrompt)
	}
	if !strings.Contains(result.SoulPrompt, "citizen #42") {
		t.Fatalf("identity missing from soul prompt")
	}
}

func TestGenerateSoulPrompt_ScoreNeverInPrompt(t *testing.T) {
	mock := &llm.MockClient{Response: "PERSONALITY: Quiet.\nSPEECH STYLE: Flat."}
	svc := NewSoulServiceWithRand(mock, rand.New(rand.NewSource(9)))

	result, err := svc.GenerateSoulPrompt(context.Background(), "7", []domain.NormalizedTrait{
		{TraitType: "Headwear", Value: "Crown"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(result.SoulPrompt, "alignment score") || strings.Contains(result.SoulPrompt, "-100") {
		t.Fatalf("numeric mechanic leaked into soul prompt: %q", result.SoulPrompt)
	}
}

func TestGenerateSoulPrompt_FallbackOnMalformedResponse(t *testing.T) {
	cases := []string{
		"",
		"just prose without labels",
		"PERSONALITY: only one section present",
	}
	for _, raw := range cases {
		mock := &llm.MockClient{Response: raw}
		svc := NewSoulServiceWithRand(mock, rand.New(rand.NewSource(1)))

		result, err := svc.GenerateSoulPrompt(context.Background(), "5", []domain.NormalizedTrait{
			{TraitType: "Mouth", Value: "Cigarette"},
			{TraitType: "Headwear", Value: "Horns"},
		})
		if err != nil {
			t.Fatalf("fallback should not error for %q: %v", raw, err)
		}
		// La concatenacion determinista usa tendencias de raza + top-2 rasgos.
		if !strings.Contains(result.SoulPrompt, "human of Noctis City") {
			t.Fatalf("fallback personality missing for %q: %q", raw, result.SoulPrompt)
		}
		if !strings.Contains(result.SoulPrompt, "World-weary and cynical") {
			t.Fatalf("first matched trait dimension missing: %q", result.SoulPrompt)
		}
		if result.SpeechStyle == "" {
			t.Fatalf("fallback speech style empty")
		}
	}
}

func TestGenerateSoulPrompt_LLMErrorPropagates(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("boom")}
	svc := NewSoulService(mock)
	_, err := svc.GenerateSoulPrompt(context.Background(), "1", nil)
	if err == nil {
		t.Fatal("expected hard failure when the completion call errors")
	}
}

func TestGenerateSoulPrompt_AlignmentWithinBounds(t *testing.T) {
	mock := &llm.MockClient{Response: "PERSONALITY: A.\nSPEECH STYLE: B."}
	for seed := int64(0); seed < 20; seed++ {
		svc := NewSoulServiceWithRand(mock, rand.New(rand.NewSource(seed)))
		result, err := svc.GenerateSoulPrompt(context.Background(), "9", []domain.NormalizedTrait{
			{TraitType: "Race", Value: "Gold Skull"},
			{TraitType: "Headwear", Value: "Crown"},
			{TraitType: "Accessory", Value: "Gold Chain"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.AlignmentScore < -100 || result.AlignmentScore > 100 {
			t.Fatalf("alignment out of range: %d", result.AlignmentScore)
		}
	}
}
