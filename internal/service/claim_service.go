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
	"soul-feed/internal/llm"
	"soul-feed/internal/repository"
)

var (
	// ErrInvalidClaim cubre payloads incompletos o malformados.
	ErrInvalidClaim = errors.New("invalid claim request")
	// ErrNotOwner indica que la wallet no posee el token reclamado.
	ErrNotOwner = errors.New("wallet does not own this token")
	// ErrProfileExists indica que el token ya fue reclamado.
	ErrProfileExists = errors.New("token already claimed")
	// ErrProfileNotFound indica que el perfil pedido no existe.
	ErrProfileNotFound = errors.New("profile not found")
)

// ClaimInput es el payload para activar un token.
type ClaimInput struct {
	WalletAddress   string `json:"wallet_address"`
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
}

// ClaimService orquesta la activacion de un token: verificacion de
// ownership, normalizacion de metadata, sintesis de alma para la coleccion
// flagship y el post de debut. Las etapas de enriquecimiento degradan en vez
// de abortar: un indexador caido no puede dejar al usuario sin personaje.
type ClaimService struct {
	logger           *zap.Logger
	chainClient      chain.Client
	userRepo         repository.UserRepository
	profileRepo      repository.ProfileRepository
	postRepo         repository.PostRepository
	soulSvc          *SoulService
	postSvc          *PostService
	universeSvc      *UniverseService
	llmClient        llm.Client
	flagshipContract string
	now              func() time.Time
}

func NewClaimService(
	logger *zap.Logger,
	chainClient chain.Client,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	postRepo repository.PostRepository,
	soulSvc *SoulService,
	postSvc *PostService,
	universeSvc *UniverseService,
	llmClient llm.Client,
	flagshipContract string,
) *ClaimService {
	return &ClaimService{
		logger:           logger,
		chainClient:      chainClient,
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		postRepo:         postRepo,
		soulSvc:          soulSvc,
		postSvc:          postSvc,
		universeSvc:      universeSvc,
		llmClient:        llmClient,
		flagshipContract: strings.ToLower(flagshipContract),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Claim activa un token para una wallet y devuelve el perfil creado.
func (s *ClaimService) Claim(ctx context.Context, input ClaimInput) (domain.NFTProfile, error) {
	wallet := strings.ToLower(strings.TrimSpace(input.WalletAddress))
	contract := strings.ToLower(strings.TrimSpace(input.ContractAddress))
	tokenID := strings.TrimSpace(input.TokenID)
	if wallet == "" || contract == "" || tokenID == "" {
		return domain.NFTProfile{}, fmt.Errorf("%w: wallet, contract and token id are required", ErrInvalidClaim)
	}

	owner, err := s.chainClient.IsOwner(ctx, wallet, contract, tokenID)
	if err != nil {
		return domain.NFTProfile{}, fmt.Errorf("verify ownership: %w", err)
	}
	if !owner {
		return domain.NFTProfile{}, ErrNotOwner
	}

	if _, err := s.profileRepo.GetByToken(ctx, contract, tokenID); err == nil {
		return domain.NFTProfile{}, ErrProfileExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.NFTProfile{}, fmt.Errorf("check existing profile: %w", err)
	}

	user, err := s.ensureUser(ctx, wallet)
	if err != nil {
		return domain.NFTProfile{}, err
	}

	name, imageURL, traits := s.resolveMetadata(ctx, contract, tokenID)

	now := s.now()
	profile := domain.NFTProfile{
		ID:              uuid.NewString(),
		ContractAddress: contract,
		TokenID:         tokenID,
		OwnerID:         user.ID,
		Name:            name,
		ImageURL:        imageURL,
		Traits:          traits,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if contract == s.flagshipContract {
		soul, err := s.soulSvc.GenerateSoulPrompt(ctx, tokenID, traits)
		if err != nil {
			// El perfil se persiste sin alma; regenerate la completa despues.
			s.logger.Warn("soul synthesis failed during claim",
				zap.String("token_id", tokenID),
				zap.Error(err),
			)
		} else {
			profile.Race = soul.Race
			profile.AlignmentScore = soul.AlignmentScore
			profile.SpeechStyle = soul.SpeechStyle
			profile.SoulPrompt = soul.SoulPrompt
		}
	}

	profile.Bio = s.generateBio(ctx, &profile)

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return domain.NFTProfile{}, fmt.Errorf("persist profile: %w", err)
	}

	s.publishDebutPost(ctx, &profile)

	return profile, nil
}

// Regenerate rehace rasgos y alma de un perfil existente. A diferencia del
// claim, aca la sintesis fallida si es un error: el usuario la pidio.
func (s *ClaimService) Regenerate(ctx context.Context, profileID, wallet string) (domain.NFTProfile, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NFTProfile{}, ErrProfileNotFound
		}
		return domain.NFTProfile{}, fmt.Errorf("load profile: %w", err)
	}

	owner, err := s.chainClient.IsOwner(ctx, wallet, profile.ContractAddress, profile.TokenID)
	if err != nil {
		return domain.NFTProfile{}, fmt.Errorf("verify ownership: %w", err)
	}
	if !owner {
		return domain.NFTProfile{}, ErrNotOwner
	}

	if meta, err := s.chainClient.GetTokenMetadata(ctx, profile.ContractAddress, profile.TokenID); err != nil {
		s.logger.Warn("metadata refresh failed, keeping stored traits",
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
	} else {
		profile.Traits = NormalizeTraitsJSON(meta.Attributes)
		if strings.TrimSpace(meta.Name) != "" {
			profile.Name = meta.Name
		}
		if meta.Image != "" {
			profile.ImageURL = meta.Image
		}
	}

	if profile.ContractAddress == s.flagshipContract {
		soul, err := s.soulSvc.GenerateSoulPrompt(ctx, profile.TokenID, profile.Traits)
		if err != nil {
			return domain.NFTProfile{}, fmt.Errorf("soul synthesis: %w", err)
		}
		profile.Race = soul.Race
		profile.AlignmentScore = soul.AlignmentScore
		profile.SpeechStyle = soul.SpeechStyle
		profile.SoulPrompt = soul.SoulPrompt
	}

	profile.Bio = s.generateBio(ctx, &profile)
	profile.UpdatedAt = s.now()

	if err := s.profileRepo.UpdateSoul(ctx, profile); err != nil {
		return domain.NFTProfile{}, fmt.Errorf("persist regenerated profile: %w", err)
	}
	return profile, nil
}

func (s *ClaimService) ensureUser(ctx context.Context, wallet string) (domain.User, error) {
	user, err := s.userRepo.GetByWallet(ctx, wallet)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	user = domain.User{
		ID:            uuid.NewString(),
		WalletAddress: wallet,
		CreatedAt:     s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// resolveMetadata trae nombre, imagen y rasgos del indexador; si falla se
// degrada al nombre placeholder "#tokenId" sin rasgos.
func (s *ClaimService) resolveMetadata(ctx context.Context, contract, tokenID string) (string, string, []domain.NormalizedTrait) {
	meta, err := s.chainClient.GetTokenMetadata(ctx, contract, tokenID)
	if err != nil {
		s.logger.Warn("token metadata unavailable, claiming with placeholder",
			zap.String("contract", contract),
			zap.String("token_id", tokenID),
			zap.Error(err),
		)
		return "#" + tokenID, "", nil
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = "#" + tokenID
	}
	return name, meta.Image, NormalizeTraitsJSON(meta.Attributes)
}

// generateBio pide una bio corta al LLM; cualquier falla cae a una bio
// determinista para que el perfil nunca quede sin ella.
func (s *ClaimService) generateBio(ctx context.Context, profile *domain.NFTProfile) string {
	prompt := buildBioPrompt(profile)
	raw, err := s.llmClient.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   120,
		Temperature: 0.9,
	})
	if err != nil {
		s.logger.Warn("bio generation failed, using fallback", zap.String("profile_id", profile.ID), zap.Error(err))
		return fallbackBio(profile)
	}

	bio := stripWrappingQuotes(cleanModelText(raw))
	if bio == "" {
		return fallbackBio(profile)
	}
	if len(bio) > 280 {
		bio = bio[:280]
	}
	return bio
}

func buildBioPrompt(profile *domain.NFTProfile) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a one-or-two sentence social profile bio for %s", profile.Name))
	if profile.Race != "" {
		sb.WriteString(fmt.Sprintf(", a %s of Noctis City", profile.Race))
	}
	sb.WriteString(".\n")
	if len(profile.Traits) > 0 {
		parts := make([]string, 0, len(profile.Traits))
		for _, t := range profile.Traits {
			parts = append(parts, fmt.Sprintf("%s: %s", t.TraitType, t.Value))
		}
		sb.WriteString("Visible traits: " + strings.Join(parts, ", ") + ".\n")
	}
	sb.WriteString("First person, in character, no emoji, no hashtags, under 200 characters. Reply with the bio only.")
	return sb.String()
}

func fallbackBio(profile *domain.NFTProfile) string {
	if profile.Race != "" {
		return fmt.Sprintf("%s. %s of Noctis City.", profile.Name, profile.Race)
	}
	return profile.Name
}

// publishDebutPost genera y persiste el primer post. Es mejora, no
// requisito: si falla, el personaje debuta en el proximo tick del scheduler.
func (s *ClaimService) publishDebutPost(ctx context.Context, profile *domain.NFTProfile) {
	if !profile.HasSoul() {
		return
	}

	var universe *domain.Universe
	if s.universeSvc != nil {
		if u, err := s.universeSvc.GetOrFetch(ctx, profile.ContractAddress); err == nil {
			universe = &u
		}
	}

	gen, err := s.postSvc.GenerateFirstPost(ctx, profile, universe)
	if err != nil {
		s.logger.Warn("debut post generation failed", zap.String("profile_id", profile.ID), zap.Error(err))
		return
	}

	moodSeed := gen.Mood
	if moodSeed == "" {
		moodSeed = "original"
	}
	post := domain.Post{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		Content:   gen.Content,
		MoodSeed:  moodSeed,
		CreatedAt: s.now(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		s.logger.Warn("debut post persist failed", zap.String("profile_id", profile.ID), zap.Error(err))
	}
}
