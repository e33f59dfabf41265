package service

import (
	"encoding/json"
	"strings"

	"soul-feed/internal/domain"
)

// ParsePostResponse es la unica frontera de parseo de la salida del LLM
// generador de posts. Nunca falla por formato: cualquier respuesta no
// parseable degrada a un post original con el texto crudo (sin comillas
// envolventes). Devuelve ok=false solo cuando no hay contenido usable.
//
// Invariante de salida: si Type es reply, ReplyToPostID esta presente y
// pertenece al pool de candidatos que se le paso al prompt. Un reply_to
// desconocido degrada tipo Y target a original, nunca uno solo.
func ParsePostResponse(raw string, candidateIDs []string) (domain.GeneratedPost, bool) {
	fallback := func() (domain.GeneratedPost, bool) {
		content := stripWrappingQuotes(cleanModelText(raw))
		if content == "" {
			return domain.GeneratedPost{}, false
		}
		return domain.GeneratedPost{Type: domain.PostTypeOriginal, Content: content}, true
	}

	cleaned := cleanModelText(raw)
	jsonObj := extractFirstJSONObject(cleaned)
	if jsonObj == "" {
		jsonObj = extractFirstJSONObject(raw)
	}
	if jsonObj == "" {
		return fallback()
	}

	var parsed struct {
		Type    string `json:"type"`
		ReplyTo string `json:"reply_to"`
		Content string `json:"content"`
		Mood    string `json:"mood"`
	}
	if err := json.Unmarshal([]byte(jsonObj), &parsed); err != nil {
		return fallback()
	}

	content := stripWrappingQuotes(strings.TrimSpace(parsed.Content))
	if content == "" {
		return fallback()
	}

	post := domain.GeneratedPost{
		Type:    domain.PostTypeOriginal,
		Content: content,
		Mood:    strings.TrimSpace(parsed.Mood),
	}

	if strings.TrimSpace(parsed.Type) == string(domain.PostTypeReply) {
		replyTo := strings.TrimSpace(parsed.ReplyTo)
		if replyTo != "" && containsID(candidateIDs, replyTo) {
			post.Type = domain.PostTypeReply
			post.ReplyToPostID = &replyTo
		}
		// Target inventado o ausente: queda como original.
	}

	return post, true
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
