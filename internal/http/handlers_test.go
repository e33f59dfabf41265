package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"soul-feed/internal/chain"
	"soul-feed/internal/domain"
	"soul-feed/internal/llm"
	"soul-feed/internal/service"
)

const testFlagship = "0xflagship"

type mockUserRepo struct {
	users []domain.User
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepo) GetByWallet(_ context.Context, walletAddress string) (domain.User, error) {
	for _, u := range m.users {
		if u.WalletAddress == walletAddress {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

type mockProfileRepo struct {
	profiles []domain.NFTProfile
}

func (m *mockProfileRepo) Create(_ context.Context, profile domain.NFTProfile) error {
	m.profiles = append(m.profiles, profile)
	return nil
}

func (m *mockProfileRepo) UpdateSoul(_ context.Context, profile domain.NFTProfile) error {
	for i := range m.profiles {
		if m.profiles[i].ID == profile.ID {
			m.profiles[i] = profile
		}
	}
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (domain.NFTProfile, error) {
	for _, p := range m.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.NFTProfile{}, pgx.ErrNoRows
}

func (m *mockProfileRepo) GetByToken(_ context.Context, contractAddress, tokenID string) (domain.NFTProfile, error) {
	for _, p := range m.profiles {
		if p.ContractAddress == contractAddress && p.TokenID == tokenID {
			return p, nil
		}
	}
	return domain.NFTProfile{}, pgx.ErrNoRows
}

func (m *mockProfileRepo) ListActivated(_ context.Context, contractAddress string) ([]domain.NFTProfile, error) {
	var out []domain.NFTProfile
	for _, p := range m.profiles {
		if p.ContractAddress == contractAddress && p.HasSoul() {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockPostRepo struct {
	posts []domain.Post
	feed  []domain.FeedPost
}

func (m *mockPostRepo) Create(_ context.Context, post domain.Post) error {
	m.posts = append(m.posts, post)
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (domain.Post, error) {
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Post{}, pgx.ErrNoRows
}

func (m *mockPostRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Post, error) {
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

func (m *mockPostRepo) ListRecentByProfile(_ context.Context, profileID string, limit int) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range m.posts {
		if p.ProfileID == profileID {
			out = append(out, p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPostRepo) ListRecentByContract(_ context.Context, contractAddress string, limit int) ([]domain.FeedPost, error) {
	if len(m.feed) > limit {
		return m.feed[:limit], nil
	}
	return m.feed, nil
}

func (m *mockPostRepo) ListRecentByContractExcluding(_ context.Context, contractAddress, excludeProfileID string, limit int) ([]domain.FeedPost, error) {
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

func (m *mockPostRepo) CountSinceByProfile(_ context.Context, profileID string, since time.Time) (int, int, error) {
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

type testEnv struct {
	router   *gin.Engine
	jwtSvc   *service.JWTService
	users    *mockUserRepo
	profiles *mockProfileRepo
	posts    *mockPostRepo
}

func newTestEnv(chainClient chain.Client, llmClient llm.Client) *testEnv {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	env := &testEnv{
		users:    &mockUserRepo{},
		profiles: &mockProfileRepo{},
		posts:    &mockPostRepo{},
	}

	env.jwtSvc = service.NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, service.NewMemorySessionStore())
	authSvc := service.NewAuthService(logger, chainClient, env.users, env.jwtSvc)
	soulSvc := service.NewSoulService(llmClient)
	postSvc := service.NewPostService(llmClient, testFlagship)
	claimSvc := service.NewClaimService(logger, chainClient, env.users, env.profiles, env.posts, soulSvc, postSvc, nil, llmClient, testFlagship)

	env.router = NewRouter(
		logger,
		NewAuthHandler(logger, authSvc, env.jwtSvc),
		NewClaimHandler(logger, claimSvc),
		NewFeedHandler(logger, env.profiles, env.posts),
		NewUniverseHandler(logger, nil),
		NewSchedulerHandler(logger, nil),
		JWTAuthMiddleware(env.jwtSvc),
		"hush",
	)
	return env
}

func (e *testEnv) bearerFor(t *testing.T, wallet string) string {
	t.Helper()
	pair, err := e.jwtSvc.GeneratePair(domain.User{ID: "u1", WalletAddress: wallet})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return "Bearer " + pair.AccessToken
}

func postJSON(router *gin.Engine, path, bearer string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession_ValidSignature(t *testing.T) {
	env := newTestEnv(&chain.MockClient{SigValid: true}, &llm.MockClient{Response: "x"})

	rec := postJSON(env.router, "/auth/session", "", gin.H{
		"wallet_address": "0xWALLET",
		"message":        "login",
		"signature":      "0xsig",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tokens.AccessToken == "" {
		t.Fatal("no access token issued")
	}
}

func TestCreateSession_BadSignature(t *testing.T) {
	env := newTestEnv(&chain.MockClient{SigValid: false}, &llm.MockClient{Response: "x"})

	rec := postJSON(env.router, "/auth/session", "", gin.H{
		"wallet_address": "0xw",
		"message":        "login",
		"signature":      "bad",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestClaim_RequiresSession(t *testing.T) {
	env := newTestEnv(&chain.MockClient{Owner: true}, &llm.MockClient{Response: "x"})

	rec := postJSON(env.router, "/claim", "", gin.H{
		"contract_address": testFlagship,
		"token_id":         "42",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestClaim_EndToEnd(t *testing.T) {
	llmClient := &llm.MockClient{Responses: []string{
		"PERSONALITY: Keeps ledgers nobody asked for. SPEECH STYLE: dry and itemized.",
		"I count things so they stay real.",
		`{"type":"original","reply_to":null,"content":"Inventory day. The dome lost two lights.","mood":"dry"}`,
	}}
	env := newTestEnv(&chain.MockClient{
		Owner: true,
		Metadata: chain.TokenMetadata{
			Name:       "Citizen 42",
			Attributes: []byte(`[{"trait_type":"Hat","value":"Crown"}]`),
		},
	}, llmClient)

	rec := postJSON(env.router, "/claim", env.bearerFor(t, "0xwallet"), gin.H{
		"contract_address": testFlagship,
		"token_id":         "42",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Profile domain.NFTProfile `json:"profile"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Profile.HasSoul() || resp.Profile.Name != "Citizen 42" {
		t.Fatalf("unexpected profile: %+v", resp.Profile)
	}
	if len(env.posts.posts) != 1 {
		t.Fatalf("debut post not persisted: %d", len(env.posts.posts))
	}
}

func TestClaim_DuplicateConflicts(t *testing.T) {
	env := newTestEnv(&chain.MockClient{Owner: true}, &llm.MockClient{Response: "x"})
	env.profiles.profiles = append(env.profiles.profiles, domain.NFTProfile{
		ID: "p1", ContractAddress: testFlagship, TokenID: "42",
	})

	rec := postJSON(env.router, "/claim", env.bearerFor(t, "0xwallet"), gin.H{
		"contract_address": testFlagship,
		"token_id":         "42",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestClaim_NotOwnerForbidden(t *testing.T) {
	env := newTestEnv(&chain.MockClient{Owner: false}, &llm.MockClient{Response: "x"})

	rec := postJSON(env.router, "/claim", env.bearerFor(t, "0xwallet"), gin.H{
		"contract_address": testFlagship,
		"token_id":         "42",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestGetFeed_ReturnsPosts(t *testing.T) {
	env := newTestEnv(&chain.MockClient{}, &llm.MockClient{Response: "x"})
	env.posts.feed = []domain.FeedPost{
		{Post: domain.Post{ID: "p1", ProfileID: "a", Content: "hola", CreatedAt: time.Now().UTC()}, AuthorName: "A", AuthorRace: domain.RaceHuman},
	}

	req := httptest.NewRequest(http.MethodGet, "/feed/"+testFlagship, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Posts []domain.FeedPost `json:"posts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].AuthorName != "A" {
		t.Fatalf("unexpected feed: %+v", resp.Posts)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	env := newTestEnv(&chain.MockClient{}, &llm.MockClient{Response: "x"})

	req := httptest.NewRequest(http.MethodGet, "/profiles/ghost", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSchedulerTick_RequiresCronSecret(t *testing.T) {
	env := newTestEnv(&chain.MockClient{}, &llm.MockClient{Response: "x"})

	req := httptest.NewRequest(http.MethodPost, "/internal/scheduler/tick", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", rec.Code)
	}
}
