package domain

import "time"

type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	ENSName       string    `json:"ens_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NormalizedTrait es el par canonico (tipo, valor) derivado de metadata cruda.
// Se construye una sola vez al reclamar el token; nunca se re-normaliza salvo
// regeneracion explicita.
type NormalizedTrait struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// NFTProfile es el personaje persistido: identidad, rasgos y campos de alma.
type NFTProfile struct {
	ID              string            `json:"id"`
	ContractAddress string            `json:"contract_address"`
	TokenID         string            `json:"token_id"`
	OwnerID         string            `json:"owner_id"`
	Name            string            `json:"name"`
	ImageURL        string            `json:"image_url,omitempty"`
	Traits          []NormalizedTrait `json:"traits"`
	Race            Race              `json:"race,omitempty"`
	AlignmentScore  int               `json:"alignment_score"`
	SpeechStyle     string            `json:"speech_style,omitempty"`
	SoulPrompt      string            `json:"soul_prompt,omitempty"`
	Bio             string            `json:"bio,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// HasSoul indica si el perfil ya fue activado con un soul prompt.
func (p *NFTProfile) HasSoul() bool {
	return p.SoulPrompt != ""
}

type PostType string

const (
	PostTypeOriginal PostType = "original"
	PostTypeReply    PostType = "reply"
)

// Post es una publicacion del feed. ReplyToPostID nil = post raiz;
// las respuestas forman cadenas de profundidad arbitraria.
type Post struct {
	ID            string    `json:"id"`
	ProfileID     string    `json:"nft_profile_id"`
	Content       string    `json:"content"`
	MoodSeed      string    `json:"mood_seed,omitempty"`
	ReplyToPostID *string   `json:"reply_to_post_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Post) IsReply() bool {
	return p.ReplyToPostID != nil && *p.ReplyToPostID != ""
}

// FeedPost es un post junto con los datos de autor que el feed y los
// prompts necesitan mostrar.
type FeedPost struct {
	Post
	AuthorName string `json:"author_name"`
	AuthorRace Race   `json:"author_race,omitempty"`
}

// Universe agrupa el lore de una coleccion: mundo, facciones y vocabulario
// que alimentan los prompts de generacion.
type Universe struct {
	ContractAddress string            `json:"contract_address"`
	Name            string            `json:"name"`
	World           string            `json:"world,omitempty"`
	Factions        []string          `json:"factions,omitempty"`
	Vocabulary      []string          `json:"vocabulary,omitempty"`
	Wording         map[string]string `json:"wording,omitempty"`
	ThemePrimary    string            `json:"theme_primary,omitempty"`
	ThemeFont       string            `json:"theme_font,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// TraitMapping es una fila estatica de la tabla rasgo -> personalidad.
// TraitValues son alias; varios alias pueden apuntar a la misma fila.
type TraitMapping struct {
	TraitValues          []string `json:"trait_values"`
	Category             string   `json:"category"`
	PersonalityDimension string   `json:"personality_dimension"`
	AlignmentModifier    int      `json:"alignment_modifier"`
	SpeechDimension      string   `json:"speech_dimension"`
}

// SoulResult es la salida del ensamblador de alma.
type SoulResult struct {
	Race           Race   `json:"race"`
	AlignmentScore int    `json:"alignment_score"`
	SpeechStyle    string `json:"speech_style"`
	SoulPrompt     string `json:"soul_prompt"`
}

// GeneratedPost es el contrato parseado de la salida del LLM generador.
// Invariante: si Type es reply, ReplyToPostID apunta a un candidato real;
// si el target no existe, ambos campos se degradan a original.
type GeneratedPost struct {
	Type          PostType `json:"type"`
	ReplyToPostID *string  `json:"reply_to_post_id,omitempty"`
	Content       string   `json:"content"`
	Mood          string   `json:"mood,omitempty"`
}
