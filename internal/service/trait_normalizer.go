package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"soul-feed/internal/domain"
)

// unknownTraitType es el sentinel para registros sin campo de tipo usable.
// Nunca sobrevive al filtro final.
const unknownTraitType = "Unknown"

// NormalizeTraits canonicaliza metadata cruda de rasgos a pares
// (trait_type, value). El upstream varia entre colecciones: acepta
// trait_type, type o name como clave (en ese orden de prioridad) y
// stringifica cualquier tipo de valor. Input no-array devuelve vacio,
// nunca error. Es la unica fuente de verdad de esta logica: claim,
// regeneracion y backfill pasan por aca.
func NormalizeTraits(raw any) []domain.NormalizedTrait {
	items, ok := rawAsSlice(raw)
	if !ok {
		return nil
	}

	var out []domain.NormalizedTrait
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}

		traitType := firstNonEmptyString(record, "trait_type", "type", "name")
		if traitType == "" {
			traitType = unknownTraitType
		}
		value := stringifyTraitValue(record["value"])

		if traitType == "" || traitType == unknownTraitType {
			continue
		}
		out = append(out, domain.NormalizedTrait{TraitType: traitType, Value: value})
	}
	return out
}

// NormalizeTraitsJSON decodifica attributes crudos (json.RawMessage del
// indexador) y los normaliza. JSON invalido degrada a vacio.
func NormalizeTraitsJSON(raw []byte) []domain.NormalizedTrait {
	if len(raw) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	return NormalizeTraits(decoded)
}

func rawAsSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []domain.NormalizedTrait:
		// Re-normalizar salida canonica es idempotente.
		items := make([]any, 0, len(v))
		for _, t := range v {
			items = append(items, map[string]any{"trait_type": t.TraitType, "value": t.Value})
		}
		return items, true
	default:
		return nil, false
	}
}

func firstNonEmptyString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := record[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func stringifyTraitValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}
