package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"soul-feed/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (domain.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Post, error)
	ListRecentByProfile(ctx context.Context, profileID string, limit int) ([]domain.Post, error)
	ListRecentByContract(ctx context.Context, contractAddress string, limit int) ([]domain.FeedPost, error)
	ListRecentByContractExcluding(ctx context.Context, contractAddress, excludeProfileID string, limit int) ([]domain.FeedPost, error)
	CountSinceByProfile(ctx context.Context, profileID string, since time.Time) (originals, replies int, err error)
}

type PgPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post) error {
	const query = `
		INSERT INTO posts (id, nft_profile_id, content, mood_seed, reply_to_post_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.ProfileID,
		post.Content,
		post.MoodSeed,
		post.ReplyToPostID,
		post.CreatedAt,
	)
	return err
}

func (r *PgPostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	const query = `
		SELECT id, nft_profile_id, content, mood_seed, reply_to_post_id, created_at
		FROM posts
		WHERE id = $1
	`
	var p domain.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.ProfileID,
		&p.Content,
		&p.MoodSeed,
		&p.ReplyToPostID,
		&p.CreatedAt,
	)
	return p, err
}

// ListByIDs devuelve los posts pedidos en orden cronologico ascendente,
// que es el orden que espera el contexto de hilo.
func (r *PgPostRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
		SELECT id, nft_profile_id, content, mood_seed, reply_to_post_id, created_at
		FROM posts
		WHERE id = ANY($1)
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *PgPostRepository) ListRecentByProfile(ctx context.Context, profileID string, limit int) ([]domain.Post, error) {
	const query = `
		SELECT id, nft_profile_id, content, mood_seed, reply_to_post_id, created_at
		FROM posts
		WHERE nft_profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, profileID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *PgPostRepository) ListRecentByContract(ctx context.Context, contractAddress string, limit int) ([]domain.FeedPost, error) {
	return r.listFeed(ctx, contractAddress, "", limit)
}

// ListRecentByContractExcluding arma el pool de candidatos para respuestas:
// posts recientes de otros personajes de la misma coleccion.
func (r *PgPostRepository) ListRecentByContractExcluding(ctx context.Context, contractAddress, excludeProfileID string, limit int) ([]domain.FeedPost, error) {
	return r.listFeed(ctx, contractAddress, excludeProfileID, limit)
}

func (r *PgPostRepository) listFeed(ctx context.Context, contractAddress, excludeProfileID string, limit int) ([]domain.FeedPost, error) {
	const query = `
		SELECT p.id, p.nft_profile_id, p.content, p.mood_seed, p.reply_to_post_id, p.created_at, np.name, np.race
		FROM posts p
		JOIN nft_profiles np ON np.id = p.nft_profile_id
		WHERE np.contract_address = $1 AND ($2 = '' OR p.nft_profile_id <> $2)
		ORDER BY p.created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, strings.ToLower(contractAddress), excludeProfileID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.FeedPost
	for rows.Next() {
		var (
			fp   domain.FeedPost
			race string
		)
		if err := rows.Scan(
			&fp.ID,
			&fp.ProfileID,
			&fp.Content,
			&fp.MoodSeed,
			&fp.ReplyToPostID,
			&fp.CreatedAt,
			&fp.AuthorName,
			&race,
		); err != nil {
			return nil, err
		}
		fp.AuthorRace = domain.Race(race)
		posts = append(posts, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// CountSinceByProfile cuenta los posts del perfil desde el corte dado,
// separados en originales y respuestas. El corte tipico es medianoche UTC.
func (r *PgPostRepository) CountSinceByProfile(ctx context.Context, profileID string, since time.Time) (int, int, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE reply_to_post_id IS NULL),
			COUNT(*) FILTER (WHERE reply_to_post_id IS NOT NULL)
		FROM posts
		WHERE nft_profile_id = $1 AND created_at >= $2
	`
	var originals, replies int
	err := r.pool.QueryRow(ctx, query, profileID, since).Scan(&originals, &replies)
	return originals, replies, err
}

type postRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPosts(rows postRows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID,
			&p.ProfileID,
			&p.Content,
			&p.MoodSeed,
			&p.ReplyToPostID,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
