package service

import (
	"regexp"
	"strings"
)

// extractFirstJSONObject devuelve el primer bloque {...} balanceado del
// texto, respetando strings y escapes. Vacio si no hay objeto completo.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}

	return ""
}

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanModelText quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// stripWrappingQuotes saca un par de comillas envolventes si el texto entero
// viene citado (comun cuando el modelo responde con el post entre comillas).
func stripWrappingQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
