package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"soul-feed/internal/domain"
)

type UniverseRepository interface {
	Upsert(ctx context.Context, universe domain.Universe) error
	GetByContract(ctx context.Context, contractAddress string) (domain.Universe, error)
}

type PgUniverseRepository struct {
	pool *pgxpool.Pool
}

func NewPgUniverseRepository(pool *pgxpool.Pool) *PgUniverseRepository {
	return &PgUniverseRepository{pool: pool}
}

func (r *PgUniverseRepository) Upsert(ctx context.Context, universe domain.Universe) error {
	factionsJSON, err := json.Marshal(universe.Factions)
	if err != nil {
		return fmt.Errorf("marshal factions: %w", err)
	}
	vocabularyJSON, err := json.Marshal(universe.Vocabulary)
	if err != nil {
		return fmt.Errorf("marshal vocabulary: %w", err)
	}
	wordingJSON, err := json.Marshal(universe.Wording)
	if err != nil {
		return fmt.Errorf("marshal wording: %w", err)
	}

	const query = `
		INSERT INTO universes (contract_address, name, world, factions, vocabulary, wording, theme_primary, theme_font, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (contract_address) DO UPDATE
		SET name = EXCLUDED.name, world = EXCLUDED.world, factions = EXCLUDED.factions,
		    vocabulary = EXCLUDED.vocabulary, wording = EXCLUDED.wording,
		    theme_primary = EXCLUDED.theme_primary, theme_font = EXCLUDED.theme_font
	`
	_, err = r.pool.Exec(ctx, query,
		strings.ToLower(universe.ContractAddress),
		universe.Name,
		universe.World,
		factionsJSON,
		vocabularyJSON,
		wordingJSON,
		universe.ThemePrimary,
		universe.ThemeFont,
		universe.CreatedAt,
	)
	return err
}

func (r *PgUniverseRepository) GetByContract(ctx context.Context, contractAddress string) (domain.Universe, error) {
	const query = `
		SELECT contract_address, name, world, factions, vocabulary, wording, theme_primary, theme_font, created_at
		FROM universes
		WHERE contract_address = $1
	`
	var (
		u              domain.Universe
		factionsJSON   []byte
		vocabularyJSON []byte
		wordingJSON    []byte
	)
	err := r.pool.QueryRow(ctx, query, strings.ToLower(contractAddress)).Scan(
		&u.ContractAddress,
		&u.Name,
		&u.World,
		&factionsJSON,
		&vocabularyJSON,
		&wordingJSON,
		&u.ThemePrimary,
		&u.ThemeFont,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.Universe{}, err
	}
	if len(factionsJSON) > 0 {
		if err := json.Unmarshal(factionsJSON, &u.Factions); err != nil {
			return domain.Universe{}, fmt.Errorf("unmarshal factions: %w", err)
		}
	}
	if len(vocabularyJSON) > 0 {
		if err := json.Unmarshal(vocabularyJSON, &u.Vocabulary); err != nil {
			return domain.Universe{}, fmt.Errorf("unmarshal vocabulary: %w", err)
		}
	}
	if len(wordingJSON) > 0 {
		if err := json.Unmarshal(wordingJSON, &u.Wording); err != nil {
			return domain.Universe{}, fmt.Errorf("unmarshal wording: %w", err)
		}
	}
	return u, nil
}
