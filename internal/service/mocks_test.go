package service

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"soul-feed/internal/domain"
)

// Mocks de repositorios compartidos por los tests del paquete.

type mockPostRepo struct {
	posts     []domain.Post
	feed      []domain.FeedPost
	created   []domain.Post
	createErr error
	getErr    error
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, post)
	m.posts = append(m.posts, post)
	return nil
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (domain.Post, error) {
	if m.getErr != nil {
		return domain.Post{}, m.getErr
	}
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Post{}, pgx.ErrNoRows
}

func (m *mockPostRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Post, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Post
	for _, p := range m.posts {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockPostRepo) ListRecentByProfile(ctx context.Context, profileID string, limit int) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range m.posts {
		if p.ProfileID == profileID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPostRepo) ListRecentByContract(ctx context.Context, contractAddress string, limit int) ([]domain.FeedPost, error) {
	if len(m.feed) > limit {
		return m.feed[:limit], nil
	}
	return m.feed, nil
}

func (m *mockPostRepo) ListRecentByContractExcluding(ctx context.Context, contractAddress, excludeProfileID string, limit int) ([]domain.FeedPost, error) {
	var out []domain.FeedPost
	for _, fp := range m.feed {
		if fp.ProfileID != excludeProfileID {
			out = append(out, fp)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPostRepo) CountSinceByProfile(ctx context.Context, profileID string, since time.Time) (int, int, error) {
	originals, replies := 0, 0
	for _, p := range m.posts {
		if p.ProfileID != profileID || p.CreatedAt.Before(since) {
			continue
		}
		if p.IsReply() {
			replies++
		} else {
			originals++
		}
	}
	return originals, replies, nil
}

type mockProfileRepo struct {
	profiles  []domain.NFTProfile
	created   []domain.NFTProfile
	updated   []domain.NFTProfile
	createErr error
}

func (m *mockProfileRepo) Create(ctx context.Context, profile domain.NFTProfile) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, profile)
	m.profiles = append(m.profiles, profile)
	return nil
}

func (m *mockProfileRepo) UpdateSoul(ctx context.Context, profile domain.NFTProfile) error {
	m.updated = append(m.updated, profile)
	for i := range m.profiles {
		if m.profiles[i].ID == profile.ID {
			m.profiles[i] = profile
		}
	}
	return nil
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (domain.NFTProfile, error) {
	for _, p := range m.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.NFTProfile{}, pgx.ErrNoRows
}

func (m *mockProfileRepo) GetByToken(ctx context.Context, contractAddress, tokenID string) (domain.NFTProfile, error) {
	for _, p := range m.profiles {
		if p.ContractAddress == contractAddress && p.TokenID == tokenID {
			return p, nil
		}
	}
	return domain.NFTProfile{}, pgx.ErrNoRows
}

func (m *mockProfileRepo) ListActivated(ctx context.Context, contractAddress string) ([]domain.NFTProfile, error) {
	var out []domain.NFTProfile
	for _, p := range m.profiles {
		if p.ContractAddress == contractAddress && p.HasSoul() {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockUserRepo struct {
	users []domain.User
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepo) GetByWallet(ctx context.Context, walletAddress string) (domain.User, error) {
	for _, u := range m.users {
		if u.WalletAddress == walletAddress {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

type mockUniverseRepo struct {
	universes map[string]domain.Universe
	getCalls  int
}

func (m *mockUniverseRepo) Upsert(ctx context.Context, universe domain.Universe) error {
	if m.universes == nil {
		m.universes = map[string]domain.Universe{}
	}
	m.universes[universe.ContractAddress] = universe
	return nil
}

func (m *mockUniverseRepo) GetByContract(ctx context.Context, contractAddress string) (domain.Universe, error) {
	m.getCalls++
	u, ok := m.universes[contractAddress]
	if !ok {
		return domain.Universe{}, pgx.ErrNoRows
	}
	return u, nil
}
