package service

import (
	"math/rand"

	"soul-feed/internal/domain"
)

const (
	alignmentMin       = -100
	alignmentMax       = 100
	traitModifierClamp = 40
	alignmentVariance  = 15
)

// ScoreAlignment combina la base de raza, los modificadores de rasgos
// (sumados y clampeados a [-40,40]) y varianza uniforme en [-15,15],
// clampeando el total a [-100,100]. La varianza es contractual, no un bug:
// regenerar un personaje produce drift esperado en el alineamiento.
func ScoreAlignment(raceBase int, matched []domain.TraitMapping, rng *rand.Rand) int {
	sum := 0
	for _, m := range matched {
		sum += m.AlignmentModifier
	}
	total := clamp(sum, -traitModifierClamp, traitModifierClamp) + raceBase + randomVariance(rng)
	return clamp(total, alignmentMin, alignmentMax)
}

func randomVariance(rng *rand.Rand) int {
	if rng == nil {
		return rand.Intn(2*alignmentVariance+1) - alignmentVariance
	}
	return rng.Intn(2*alignmentVariance+1) - alignmentVariance
}

// InterpretAlignment traduce el score a la banda textual que se le da al
// modelo. El numero en si nunca se le muestra al personaje.
func InterpretAlignment(score int) string {
	switch {
	case score <= -50:
		return "a sworn enemy of Somnus who works openly against the dome's authority"
	case score <= -10:
		return "distrustful of Somnus, keeping distance from wardens and their promises"
	case score <= 10:
		return "a pragmatic survivor with no strong stake in the Somnus question"
	case score <= 50:
		return "quietly sympathetic to Somnus and the order it keeps"
	default:
		return "a devoted believer in Somnus and the peace of the dome"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
