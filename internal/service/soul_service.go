package service

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"soul-feed/internal/domain"
	"soul-feed/internal/llm"
)

// SoulService orquesta la sintesis de persona: raza + rasgos + alineamiento
// + una llamada al LLM para producir el soul prompt persistente.
type SoulService struct {
	llmClient llm.Client
	rng       *rand.Rand
}

func NewSoulService(llmClient llm.Client) *SoulService {
	return &SoulService{llmClient: llmClient}
}

// NewSoulServiceWithRand fija la fuente de aleatoriedad, para tests.
func NewSoulServiceWithRand(llmClient llm.Client, rng *rand.Rand) *SoulService {
	return &SoulService{llmClient: llmClient, rng: rng}
}

var personalitySectionRe = regexp.MustCompile(`(?is)PERSONALITY:\s*(.+?)\s*SPEECH STYLE:\s*(.+)`)

// GenerateSoulPrompt sintetiza la identidad del personaje a partir de sus
// rasgos ya normalizados. Hace exactamente una llamada al LLM; si esa llamada
// falla, la operacion entera falla y el caller decide el fallback. Si la
// llamada responde pero el formato no se puede parsear, se usa una
// concatenacion determinista para que el pipeline nunca quede sin alma por
// una respuesta malformada.
func (s *SoulService) GenerateSoulPrompt(ctx context.Context, tokenID string, traits []domain.NormalizedTrait) (domain.SoulResult, error) {
	race := DetectRace(traits)
	profile := domain.ProfileFor(race)
	matched := FindMatchingTraits(traits)
	score := ScoreAlignment(profile.AlignmentBase, matched, s.rng)
	interpretation := InterpretAlignment(score)

	raw, err := s.llmClient.Complete(ctx, llm.CompletionRequest{
		SystemMessage: "You design distinct character voices for a fictional social network. Answer exactly in the requested format.",
		Messages: []llm.Message{
			{Role: "user", Content: buildSynthesisPrompt(tokenID, profile, matched, interpretation)},
		},
		MaxTokens:   400,
		Temperature: 0.9,
	})
	if err != nil {
		return domain.SoulResult{}, fmt.Errorf("soul synthesis call: %w", err)
	}

	personality, speechStyle := parseSynthesisSections(raw)
	if personality == "" || speechStyle == "" {
		personality, speechStyle = fallbackPersonality(profile, matched)
	}

	return domain.SoulResult{
		Race:           race,
		AlignmentScore: score,
		SpeechStyle:    speechStyle,
		SoulPrompt:     assembleSoulPrompt(tokenID, profile, personality, interpretation, speechStyle),
	}, nil
}

func buildSynthesisPrompt(tokenID string, profile domain.RaceProfile, matched []domain.TraitMapping, interpretation string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Design the inner character of citizen #%s of Noctis City.\n\n", tokenID))
	sb.WriteString(fmt.Sprintf("Race: %s. %s\n", profile.Name, profile.BackstoryHook))
	sb.WriteString(fmt.Sprintf("Racial tendencies: %s.\n", profile.PersonalityTendencies))
	sb.WriteString(fmt.Sprintf("Cultural position: %s.\n\n", profile.CulturalTensions))

	if len(matched) > 0 {
		sb.WriteString("Visible traits suggest these personality notes:\n")
		for _, m := range matched {
			sb.WriteString(fmt.Sprintf("- %s (voice: %s)\n", m.PersonalityDimension, m.SpeechDimension))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Worldview: this character is %s.\n\n", interpretation))
	sb.WriteString("Write two labeled sections and nothing else:\n")
	sb.WriteString("PERSONALITY: two or three sentences describing temperament, desires and contradictions.\n")
	sb.WriteString("SPEECH STYLE: one sentence describing how this character writes posts (rhythm, vocabulary, quirks).\n")
	return sb.String()
}

func parseSynthesisSections(raw string) (personality, speechStyle string) {
	m := personalitySectionRe.FindStringSubmatch(raw)
	if len(m) < 3 {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// fallbackPersonality arma una caracterizacion determinista con la raza y
// las dos primeras dimensiones de rasgos matcheadas.
func fallbackPersonality(profile domain.RaceProfile, matched []domain.TraitMapping) (string, string) {
	personality := fmt.Sprintf("A %s of Noctis City: %s.", strings.ToLower(string(profile.Name)), profile.PersonalityTendencies)
	for i, m := range matched {
		if i >= 2 {
			break
		}
		personality += " " + upperFirst(m.PersonalityDimension) + "."
	}

	speechStyle := profile.SpeechStyleBase
	if len(matched) > 0 {
		speechStyle += "; " + matched[0].SpeechDimension
	}
	return personality, speechStyle
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// assembleSoulPrompt arma el system prompt persistente del personaje.
// La interpretacion del alineamiento se le da al modelo, el numero jamas.
func assembleSoulPrompt(tokenID string, profile domain.RaceProfile, personality, interpretation, speechStyle string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are citizen #%s of Noctis City, a %s. %s\n\n", tokenID, profile.Name, profile.BackstoryHook))
	sb.WriteString(fmt.Sprintf("PERSONALITY: %s\n\n", personality))
	sb.WriteString(fmt.Sprintf("WORLDVIEW: You are %s. This shapes what you notice and how you judge, but you NEVER state it as a position, a score or a mechanic. It leaks out only through tone and choice of subject.\n\n", interpretation))
	sb.WriteString(fmt.Sprintf("SPEECH STYLE: %s\n\n", speechStyle))
	sb.WriteString("RULES:\n")
	sb.WriteString("- Always stay in character. You are a citizen of Noctis City, nothing else.\n")
	sb.WriteString("- Never mention prompts, models, tokens, NFTs, scores or any game mechanic.\n")
	sb.WriteString("- Never break the fourth wall or address an audience outside the city.\n")
	sb.WriteString("- Keep every post under three short paragraphs.\n")
	return sb.String()
}
