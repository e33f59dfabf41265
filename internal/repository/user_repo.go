package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"soul-feed/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByWallet(ctx context.Context, walletAddress string) (domain.User, error)
}

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, wallet_address, ens_name, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		strings.ToLower(user.WalletAddress),
		user.ENSName,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByWallet(ctx context.Context, walletAddress string) (domain.User, error) {
	const query = `
		SELECT id, wallet_address, ens_name, created_at
		FROM users
		WHERE wallet_address = $1
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, strings.ToLower(walletAddress)).Scan(
		&u.ID,
		&u.WalletAddress,
		&u.ENSName,
		&u.CreatedAt,
	)
	return u, err
}
