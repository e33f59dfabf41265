package service

import (
	"fmt"
	"strings"
	"time"

	"soul-feed/internal/domain"
)

const (
	maxOwnPostsInPrompt   = 5
	maxCandidatesInPrompt = 20
)

// worldLoreSummary es el resumen fijo de lore que encabeza la capa 1 del
// prompt para la coleccion flagship.
const worldLoreSummary = `Noctis City lives under a sealed dome ruled by Somnus, the authority that rations light, memory and sleep. Humans, Bots, Aliens and the three Skull lineages share its levels uneasily: the gilded towers answer to Somnus, the foundry and the flooded quarter mostly do not. Citizens talk on the public feed, the one channel Somnus claims not to read.`

// buildPostSystemMessage arma la capa 1: lore del mundo + soul prompt del
// personaje + regla de salida JSON.
func buildPostSystemMessage(universe *domain.Universe, soulPrompt string) string {
	var sb strings.Builder
	sb.WriteString("WORLD:\n")
	if universe != nil && strings.TrimSpace(universe.World) != "" {
		sb.WriteString(strings.TrimSpace(universe.World))
	} else {
		sb.WriteString(worldLoreSummary)
	}
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimSpace(soulPrompt))
	sb.WriteString("\n\nYou respond ONLY with a single JSON object, no prose around it.")
	return sb.String()
}

// buildPostUserMessage arma las capas 2 y 3: memoria propia, pool de
// candidatos, contexto de hilo si aplica, e instrucciones de generacion.
func buildPostUserMessage(ownPosts []domain.Post, candidates []domain.FeedPost, thread []domain.Post, now time.Time) string {
	var sb strings.Builder

	// Capa 2A: continuidad propia, acotada para no crecer sin limite.
	if len(ownPosts) > maxOwnPostsInPrompt {
		ownPosts = ownPosts[:maxOwnPostsInPrompt]
	}
	if len(ownPosts) > 0 {
		sb.WriteString("YOUR RECENT POSTS (newest first):\n")
		for _, p := range ownPosts {
			kind := "post"
			if p.IsReply() {
				kind = "reply"
			}
			sb.WriteString(fmt.Sprintf("- (%s, %s) %s\n", kind, relativeTimeLabel(p.CreatedAt, now), p.Content))
		}
		sb.WriteString("\n")
	}

	// Capa 2B: pool de candidatos con token de id estable por post.
	if len(candidates) > maxCandidatesInPrompt {
		candidates = candidates[:maxCandidatesInPrompt]
	}
	if len(candidates) > 0 {
		sb.WriteString("RECENT POSTS FROM OTHER CITIZENS (newest first):\n")
		for _, c := range candidates {
			sb.WriteString(fmt.Sprintf("[id:%s] %s (%s, %s): %s\n", c.ID, c.AuthorName, c.AuthorRace, relativeTimeLabel(c.CreatedAt, now), c.Content))
		}
		sb.WriteString("\n")
	}

	if len(thread) > 0 {
		sb.WriteString("THREAD YOU ARE REPLYING INTO (oldest first):\n")
		for _, p := range thread {
			sb.WriteString(fmt.Sprintf("- (%s) %s\n", relativeTimeLabel(p.CreatedAt, now), p.Content))
		}
		sb.WriteString("\n")
	}

	// Capa 3: instrucciones.
	sb.WriteString("Write your next move on the feed. You may write an ORIGINAL post")
	if len(candidates) > 0 {
		sb.WriteString(", or a REPLY to one of the posts listed above (use its id)")
	}
	sb.WriteString(".\n\n")
	sb.WriteString("Return strictly this JSON shape:\n")
	sb.WriteString(`{"type":"original"|"reply","reply_to":"<id or null>","content":"<the post>","mood":"<one word>"}` + "\n\n")
	sb.WriteString("Style rules:\n")
	sb.WriteString("- 1 to 3 short paragraphs, written as a social feed post, not narration.\n")
	sb.WriteString("- No emoji, no hashtags.\n")
	sb.WriteString("- Your worldview shows only through tone and subject, never stated outright.\n")
	return sb.String()
}

// buildFirstPostUserMessage es la variante de primer post: reglas propias
// para que los debuts no suenen todos iguales.
func buildFirstPostUserMessage(profileName string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("This is the very first post %s ever writes on the feed.\n\n", profileName))
	sb.WriteString("Rules for this debut:\n")
	sb.WriteString("- Do NOT announce an arrival. No \"just got here\", no introductions, no greetings to the feed.\n")
	sb.WriteString("- Start mid-life: an observation, a complaint, a fragment of something already happening.\n")
	sb.WriteString("- It must sound stylistically unlike anyone else's debut. Lean hard on your own speech style.\n\n")
	sb.WriteString("Return strictly this JSON shape:\n")
	sb.WriteString(`{"type":"original","reply_to":null,"content":"<the post>","mood":"<one word>"}` + "\n")
	return sb.String()
}

// buildLegacyPrompt es el camino sin soul prompt para colecciones no
// flagship: un solo mensaje, siempre produce un original.
func buildLegacyPrompt(profile *domain.NFTProfile, universe *domain.Universe) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are %s, a character from an online collectible universe", profile.Name))
	if universe != nil && universe.Name != "" {
		sb.WriteString(fmt.Sprintf(" called %q", universe.Name))
	}
	sb.WriteString(".\n")
	if len(profile.Traits) > 0 {
		sb.WriteString("Your visible traits: ")
		parts := make([]string, 0, len(profile.Traits))
		for _, t := range profile.Traits {
			parts = append(parts, fmt.Sprintf("%s: %s", t.TraitType, t.Value))
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(".\n")
	}
	if universe != nil && universe.World != "" {
		sb.WriteString("Your world: " + universe.World + "\n")
	}
	sb.WriteString("\nWrite one short social feed post in this character's voice. ")
	sb.WriteString("1 to 3 short paragraphs, no emoji, no hashtags. Reply with the post text only.")
	return sb.String()
}

// relativeTimeLabel da la etiqueta gruesa de tiempo relativo (Xm/h/d ago)
// que se anota junto a cada post en el prompt.
func relativeTimeLabel(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
