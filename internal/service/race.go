package service

import (
	"strings"

	"soul-feed/internal/domain"
)

// DetectRace mapea rasgos normalizados a una raza. El orden de chequeo es
// politica de desempate, no un detalle: variantes especificas antes que la
// raza general, campo de raza directo antes que señales secundarias.
// Reordenar cambia la clasificacion de sets ambiguos.
func DetectRace(traits []domain.NormalizedTrait) domain.Race {
	// 1. Campo de raza directo (race/species/type).
	for _, t := range traits {
		switch strings.ToLower(t.TraitType) {
		case "race", "species", "type":
			if race, ok := raceFromDirectValue(strings.ToLower(t.Value)); ok {
				return race
			}
		}
	}

	// 2. Señales secundarias en skin/body y eyes.
	for _, t := range traits {
		traitType := strings.ToLower(t.TraitType)
		value := strings.ToLower(t.Value)

		if strings.Contains(traitType, "skin") || strings.Contains(traitType, "body") {
			switch {
			case strings.Contains(value, "gold skull"):
				return domain.RaceSkullGold
			case strings.Contains(value, "blue skull"):
				return domain.RaceSkullBlue
			case strings.Contains(value, "skull"):
				return domain.RaceSkull
			case strings.Contains(value, "bot"), strings.Contains(value, "chrome"), strings.Contains(value, "metal"):
				return domain.RaceBot
			case strings.Contains(value, "alien"), strings.Contains(value, "green skin"):
				return domain.RaceAlien
			}
		}

		if strings.Contains(traitType, "eyes") {
			switch {
			case strings.Contains(value, "skull red dot"):
				return domain.RaceSkull
			case strings.Contains(value, "bot eyes"):
				return domain.RaceBot
			}
		}
	}

	// 3. Default.
	return domain.RaceHuman
}

func raceFromDirectValue(value string) (domain.Race, bool) {
	hasSkull := strings.Contains(value, "skull")
	switch {
	case hasSkull && strings.Contains(value, "gold"):
		return domain.RaceSkullGold, true
	case hasSkull && strings.Contains(value, "blue"):
		return domain.RaceSkullBlue, true
	case hasSkull:
		return domain.RaceSkull, true
	case strings.Contains(value, "bot"), strings.Contains(value, "robot"), strings.Contains(value, "android"):
		return domain.RaceBot, true
	case strings.Contains(value, "alien"):
		return domain.RaceAlien, true
	case strings.Contains(value, "human"):
		return domain.RaceHuman, true
	}
	return "", false
}
