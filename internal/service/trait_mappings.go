package service

import (
	"strings"

	"soul-feed/internal/domain"
)

// traitMappings es la tabla estatica rasgo -> contribucion de personalidad.
// Los alias se comparan en minusculas con matching de substring bidireccional
// para tolerar convenciones de nombres distintas entre colecciones; eso es
// deliberadamente laxo y una fuente conocida de falsos positivos.
var traitMappings = []domain.TraitMapping{
	{
		TraitValues:          []string{"laser eyes", "laser"},
		Category:             "eyes",
		PersonalityDimension: "intense and confrontational, stares problems down",
		AlignmentModifier:    -10,
		SpeechDimension:      "blunt, direct statements",
	},
	{
		TraitValues:          []string{"bot eyes", "robot", "android", "mechanical"},
		Category:             "body",
		PersonalityDimension: "mechanical and analytical, processes feelings as data",
		AlignmentModifier:    0,
		SpeechDimension:      "precise, clipped machine cadence",
	},
	{
		TraitValues:          []string{"gold chain", "gold teeth", "gilded"},
		Category:             "accessory",
		PersonalityDimension: "status-driven, flaunts success, keeps score",
		AlignmentModifier:    15,
		SpeechDimension:      "boastful, name-drops constantly",
	},
	{
		TraitValues:          []string{"crown", "tiara"},
		Category:             "headwear",
		PersonalityDimension: "entitled and commanding, expects deference",
		AlignmentModifier:    20,
		SpeechDimension:      "declarative, speaks as if issuing decrees",
	},
	{
		TraitValues:          []string{"hoodie", "hood"},
		Category:             "clothing",
		PersonalityDimension: "guarded and private, watches from the edges",
		AlignmentModifier:    -10,
		SpeechDimension:      "low-key, trails off mid-thought",
	},
	{
		TraitValues:          []string{"cigarette", "cigar", "smoking"},
		Category:             "mouth",
		PersonalityDimension: "world-weary and cynical, seen it all twice",
		AlignmentModifier:    -15,
		SpeechDimension:      "dry one-liners, long pauses",
	},
	{
		TraitValues:          []string{"halo", "angel"},
		Category:             "headwear",
		PersonalityDimension: "serene and principled, believes order protects people",
		AlignmentModifier:    25,
		SpeechDimension:      "gentle, measured reassurance",
	},
	{
		TraitValues:          []string{"horns", "devil", "demon"},
		Category:             "headwear",
		PersonalityDimension: "provocative and transgressive, pokes at every rule",
		AlignmentModifier:    -25,
		SpeechDimension:      "taunting, rhetorical questions",
	},
	{
		TraitValues:          []string{"suit", "tuxedo", "tie"},
		Category:             "clothing",
		PersonalityDimension: "polished operator, plays institutional games well",
		AlignmentModifier:    15,
		SpeechDimension:      "formal, diplomatic hedging",
	},
	{
		TraitValues:          []string{"leather jacket", "punk", "spikes"},
		Category:             "clothing",
		PersonalityDimension: "rebellious and loud, allergic to authority",
		AlignmentModifier:    -20,
		SpeechDimension:      "slangy, confrontational energy",
	},
	{
		TraitValues:          []string{"mohawk", "pink hair", "dyed"},
		Category:             "hair",
		PersonalityDimension: "expressive nonconformist, makes a statement of everything",
		AlignmentModifier:    -10,
		SpeechDimension:      "colorful, exaggerated phrasing",
	},
	{
		TraitValues:          []string{"visor", "vr", "goggles"},
		Category:             "eyes",
		PersonalityDimension: "futurist dreamer, half-present in another layer of reality",
		AlignmentModifier:    5,
		SpeechDimension:      "abstract, techy metaphors",
	},
	{
		TraitValues:          []string{"katana", "sword", "blade"},
		Category:             "accessory",
		PersonalityDimension: "disciplined and honorable, lives by a private code",
		AlignmentModifier:    -5,
		SpeechDimension:      "spare, proverb-like lines",
	},
	{
		TraitValues:          []string{"flower", "daisy", "rose"},
		Category:             "accessory",
		PersonalityDimension: "soft-hearted optimist, finds beauty in the dome's cracks",
		AlignmentModifier:    10,
		SpeechDimension:      "warm, earnest tone",
	},
	{
		TraitValues:          []string{"scar", "eyepatch", "bandage"},
		Category:             "face",
		PersonalityDimension: "hardened survivor, trusts actions over words",
		AlignmentModifier:    -10,
		SpeechDimension:      "terse, understated",
	},
	{
		TraitValues:          []string{"third eye", "mystic", "rune"},
		Category:             "face",
		PersonalityDimension: "cryptic seer, speaks as if remembering the future",
		AlignmentModifier:    0,
		SpeechDimension:      "riddling, prophetic fragments",
	},
}

// FindMatchingTraits devuelve las filas de la tabla que matchean los rasgos
// del personaje, deduplicadas por identidad de fila y en orden de primer
// rasgo que disparo el match (no alfabetico). Un rasgo puede disparar cero,
// una o varias filas.
func FindMatchingTraits(traits []domain.NormalizedTrait) []domain.TraitMapping {
	var matched []domain.TraitMapping
	seen := make(map[int]bool)

	for _, trait := range traits {
		value := strings.ToLower(strings.TrimSpace(trait.Value))
		if value == "" {
			continue
		}
		for i := range traitMappings {
			if seen[i] {
				continue
			}
			if mappingMatches(traitMappings[i], value) {
				seen[i] = true
				matched = append(matched, traitMappings[i])
			}
		}
	}
	return matched
}

func mappingMatches(mapping domain.TraitMapping, value string) bool {
	for _, alias := range mapping.TraitValues {
		if value == alias || strings.Contains(value, alias) || strings.Contains(alias, value) {
			return true
		}
	}
	return false
}
