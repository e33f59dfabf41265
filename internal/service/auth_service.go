package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"soul-feed/internal/chain"
	"soul-feed/internal/domain"
	"soul-feed/internal/repository"
)

// ErrInvalidSignature indica que la firma de wallet no verifica.
var ErrInvalidSignature = errors.New("wallet signature does not verify")

// LoginInput es el payload de login por firma de wallet.
type LoginInput struct {
	WalletAddress string `json:"wallet_address"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

// AuthService autentica wallets por firma y emite sesiones JWT.
type AuthService struct {
	logger      *zap.Logger
	chainClient chain.Client
	userRepo    repository.UserRepository
	jwtSvc      *JWTService
	now         func() time.Time
}

func NewAuthService(logger *zap.Logger, chainClient chain.Client, userRepo repository.UserRepository, jwtSvc *JWTService) *AuthService {
	return &AuthService{
		logger:      logger,
		chainClient: chainClient,
		userRepo:    userRepo,
		jwtSvc:      jwtSvc,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Login verifica la firma del mensaje y devuelve un par de tokens. Crea el
// usuario en el primer login.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (TokenPair, domain.User, error) {
	wallet := strings.ToLower(strings.TrimSpace(input.WalletAddress))
	if wallet == "" || strings.TrimSpace(input.Message) == "" || strings.TrimSpace(input.Signature) == "" {
		return TokenPair{}, domain.User{}, fmt.Errorf("%w: wallet, message and signature are required", ErrInvalidSignature)
	}

	valid, err := s.chainClient.VerifySignature(ctx, wallet, input.Message, input.Signature)
	if err != nil {
		return TokenPair{}, domain.User{}, fmt.Errorf("verify signature: %w", err)
	}
	if !valid {
		return TokenPair{}, domain.User{}, ErrInvalidSignature
	}

	user, err := s.userRepo.GetByWallet(ctx, wallet)
	if errors.Is(err, pgx.ErrNoRows) {
		user = domain.User{
			ID:            uuid.NewString(),
			WalletAddress: wallet,
			CreatedAt:     s.now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return TokenPair{}, domain.User{}, fmt.Errorf("create user: %w", err)
		}
	} else if err != nil {
		return TokenPair{}, domain.User{}, fmt.Errorf("load user: %w", err)
	}

	pair, err := s.jwtSvc.GeneratePair(user)
	if err != nil {
		return TokenPair{}, domain.User{}, fmt.Errorf("issue session: %w", err)
	}
	return pair, user, nil
}
