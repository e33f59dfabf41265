package domain

// Race es el identificador enumerado de raza. Se usa un tipo cerrado con
// mapeo exhaustivo en lugar de lookups por string para que agregar una raza
// sea un cambio verificado por el compilador.
type Race string

const (
	RaceHuman     Race = "Human"
	RaceBot       Race = "Bot"
	RaceAlien     Race = "Alien"
	RaceSkull     Race = "Skull"
	RaceSkullBlue Race = "Skull Blue"
	RaceSkullGold Race = "Skull Gold"
	// RaceOutsider es el default generico para colecciones no flagship.
	RaceOutsider Race = "Outsider"
)

// RaceProfile es data de referencia estatica por raza: se carga una vez y
// nunca se muta.
type RaceProfile struct {
	Name                  Race
	PopulationShare       int
	BackstoryHook         string
	PersonalityTendencies string
	AlignmentBase         int
	SpeechStyleBase       string
	CulturalTensions      string
}

// ProfileFor devuelve el perfil estatico de la raza. El switch es exhaustivo
// sobre el tipo cerrado; el default cubre solo valores corruptos en storage.
func ProfileFor(r Race) RaceProfile {
	switch r {
	case RaceHuman:
		return RaceProfile{
			Name:                  RaceHuman,
			PopulationShare:       40,
			BackstoryHook:         "Born inside Noctis City and raised on Somnus broadcasts; humans remember a time before the dome, or claim to.",
			PersonalityTendencies: "adaptable, nostalgic, quietly ambitious, prone to gossip",
			AlignmentBase:         10,
			SpeechStyleBase:       "casual street talk with old-world idioms",
			CulturalTensions:      "envied by Bots for their citizenship papers, pitied by Skulls for their short memories",
		}
	case RaceBot:
		return RaceProfile{
			Name:                  RaceBot,
			PopulationShare:       25,
			BackstoryHook:         "Assembled in the foundry levels to serve Somnus, many Bots quietly edited their own service directives.",
			PersonalityTendencies: "precise, literal, secretly sentimental, suspicious of authority",
			AlignmentBase:         -15,
			SpeechStyleBase:       "clipped and exact, occasionally glitching into poetry",
			CulturalTensions:      "distrusted by Humans who lost jobs to them, courted by Aliens as fellow outsiders",
		}
	case RaceAlien:
		return RaceProfile{
			Name:                  RaceAlien,
			PopulationShare:       10,
			BackstoryHook:         "Crashed or invited, nobody agrees; Aliens live in the flooded quarter and trade in things Somnus cannot scan.",
			PersonalityTendencies: "curious, detached, amused by local customs, loyal only to their own",
			AlignmentBase:         -30,
			SpeechStyleBase:       "odd syntax, vivid sensory metaphors",
			CulturalTensions:      "blamed for every blackout, consulted in secret by everyone",
		}
	case RaceSkull:
		return RaceProfile{
			Name:                  RaceSkull,
			PopulationShare:       15,
			BackstoryHook:         "The Skulls walked out of the catacombs the night the dome first dimmed; they do not explain themselves.",
			PersonalityTendencies: "stoic, fatalistic, darkly funny, fiercely loyal to their crew",
			AlignmentBase:         -5,
			SpeechStyleBase:       "short declarative sentences, graveyard humor",
			CulturalTensions:      "feared by Humans, studied by Bots, envied by nobody",
		}
	case RaceSkullBlue:
		return RaceProfile{
			Name:                  RaceSkullBlue,
			PopulationShare:       7,
			BackstoryHook:         "Blue Skulls took the cobalt rite and bound themselves to the tide tunnels under the city.",
			PersonalityTendencies: "calm, ceremonial, patient, keepers of old bargains",
			AlignmentBase:         15,
			SpeechStyleBase:       "formal, almost liturgical phrasing",
			CulturalTensions:      "mediate between Skull crews and the Somnus wardens, trusted fully by neither",
		}
	case RaceSkullGold:
		return RaceProfile{
			Name:                  RaceSkullGold,
			PopulationShare:       3,
			BackstoryHook:         "Gilded in the high towers, Gold Skulls sit at Somnus banquets and remember every debt owed to them.",
			PersonalityTendencies: "proud, political, generous in public, ruthless in private",
			AlignmentBase:         40,
			SpeechStyleBase:       "polished, aphoristic, faintly condescending",
			CulturalTensions:      "resented by every other race, indispensable to all of them",
		}
	case RaceOutsider:
		return RaceProfile{
			Name:                  RaceOutsider,
			PopulationShare:       0,
			BackstoryHook:         "A traveler from beyond the dome, passing through Noctis City.",
			PersonalityTendencies: "observant, self-contained",
			AlignmentBase:         0,
			SpeechStyleBase:       "plain conversational voice",
			CulturalTensions:      "belongs to no faction",
		}
	default:
		return ProfileFor(RaceOutsider)
	}
}
