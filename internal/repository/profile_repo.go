package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"soul-feed/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile domain.NFTProfile) error
	UpdateSoul(ctx context.Context, profile domain.NFTProfile) error
	GetByID(ctx context.Context, id string) (domain.NFTProfile, error)
	GetByToken(ctx context.Context, contractAddress, tokenID string) (domain.NFTProfile, error)
	ListActivated(ctx context.Context, contractAddress string) ([]domain.NFTProfile, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

const profileColumns = `id, contract_address, token_id, owner_id, name, image_url, traits, race, alignment_score, speech_style, soul_prompt, bio, created_at, updated_at`

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.NFTProfile) error {
	traitsJSON, err := json.Marshal(profile.Traits)
	if err != nil {
		return fmt.Errorf("marshal traits: %w", err)
	}
	const query = `
		INSERT INTO nft_profiles (id, contract_address, token_id, owner_id, name, image_url, traits, race, alignment_score, speech_style, soul_prompt, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.pool.Exec(ctx, query,
		profile.ID,
		strings.ToLower(profile.ContractAddress),
		profile.TokenID,
		profile.OwnerID,
		profile.Name,
		profile.ImageURL,
		traitsJSON,
		string(profile.Race),
		profile.AlignmentScore,
		profile.SpeechStyle,
		profile.SoulPrompt,
		profile.Bio,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

// UpdateSoul persiste los campos derivados de la sintesis de persona.
func (r *PgProfileRepository) UpdateSoul(ctx context.Context, profile domain.NFTProfile) error {
	const query = `
		UPDATE nft_profiles
		SET race = $1, alignment_score = $2, speech_style = $3, soul_prompt = $4, bio = $5, updated_at = $6
		WHERE id = $7
	`
	_, err := r.pool.Exec(ctx, query,
		string(profile.Race),
		profile.AlignmentScore,
		profile.SpeechStyle,
		profile.SoulPrompt,
		profile.Bio,
		profile.UpdatedAt,
		profile.ID,
	)
	return err
}

func (r *PgProfileRepository) GetByID(ctx context.Context, id string) (domain.NFTProfile, error) {
	const query = `SELECT ` + profileColumns + ` FROM nft_profiles WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgProfileRepository) GetByToken(ctx context.Context, contractAddress, tokenID string) (domain.NFTProfile, error) {
	const query = `SELECT ` + profileColumns + ` FROM nft_profiles WHERE contract_address = $1 AND token_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, strings.ToLower(contractAddress), tokenID))
}

// ListActivated devuelve los perfiles elegibles para el scheduler: coleccion
// dada y soul prompt ya generado.
func (r *PgProfileRepository) ListActivated(ctx context.Context, contractAddress string) ([]domain.NFTProfile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM nft_profiles
		WHERE contract_address = $1 AND soul_prompt <> ''
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, strings.ToLower(contractAddress))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.NFTProfile
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PgProfileRepository) scanOne(row rowScanner) (domain.NFTProfile, error) {
	var (
		p          domain.NFTProfile
		race       string
		traitsJSON []byte
	)
	err := row.Scan(
		&p.ID,
		&p.ContractAddress,
		&p.TokenID,
		&p.OwnerID,
		&p.Name,
		&p.ImageURL,
		&traitsJSON,
		&race,
		&p.AlignmentScore,
		&p.SpeechStyle,
		&p.SoulPrompt,
		&p.Bio,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.NFTProfile{}, err
	}
	p.Race = domain.Race(race)
	if len(traitsJSON) > 0 {
		if err := json.Unmarshal(traitsJSON, &p.Traits); err != nil {
			return domain.NFTProfile{}, fmt.Errorf("unmarshal traits: %w", err)
		}
	}
	return p, nil
}
