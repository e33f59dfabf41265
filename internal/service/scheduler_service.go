package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soul-feed/internal/domain"
	"soul-feed/internal/repository"
)

// ErrTickInProgress indica que otro tick tiene el lock y este se rechaza.
var ErrTickInProgress = errors.New("scheduler tick already in progress")

// TickLocker garantiza ticks no solapados entre procesos.
type TickLocker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// SchedulerConfig son los knobs del motor de publicacion.
type SchedulerConfig struct {
	OriginalQuota       int
	ReplyQuota          int
	PostProbability     float64
	DayTicks            int
	InterCharacterDelay time.Duration
}

// CharacterOutcome registra que paso con un personaje en un tick.
type CharacterOutcome struct {
	ProfileID string          `json:"profile_id"`
	Status    string          `json:"status"`
	PostType  domain.PostType `json:"post_type,omitempty"`
	Error     string          `json:"error,omitempty"`
}

const (
	outcomePosted          = "posted"
	outcomeAtQuota         = "at_quota"
	outcomeSkippedRandom   = "skipped_probability"
	outcomeSkippedConflict = "skipped_quota_conflict"
	outcomeError           = "error"
)

// TickReport resume una invocacion del scheduler.
type TickReport struct {
	Ticks    int                `json:"ticks"`
	Posted   int                `json:"posted"`
	Outcomes []CharacterOutcome `json:"outcomes"`
}

// SchedulerService recorre los personajes activados y decide, por tick, si
// cada uno publica un original, una respuesta o nada. El recorrido es
// secuencial, con una pausa entre personajes para el rate limit del
// generador.
type SchedulerService struct {
	logger           *zap.Logger
	profileRepo      repository.ProfileRepository
	postRepo         repository.PostRepository
	postSvc          *PostService
	replySel         *ReplySelector
	universeSvc      *UniverseService
	locker           TickLocker
	flagshipContract string
	cfg              SchedulerConfig
	rng              *rand.Rand
	now              func() time.Time
	sleep            func(time.Duration)
}

func NewSchedulerService(
	logger *zap.Logger,
	profileRepo repository.ProfileRepository,
	postRepo repository.PostRepository,
	postSvc *PostService,
	replySel *ReplySelector,
	universeSvc *UniverseService,
	locker TickLocker,
	flagshipContract string,
	cfg SchedulerConfig,
) *SchedulerService {
	if cfg.OriginalQuota <= 0 {
		cfg.OriginalQuota = 3
	}
	if cfg.ReplyQuota <= 0 {
		cfg.ReplyQuota = 6
	}
	if cfg.PostProbability <= 0 {
		cfg.PostProbability = 0.4
	}
	if cfg.DayTicks <= 0 {
		cfg.DayTicks = 8
	}
	return &SchedulerService{
		logger:           logger,
		profileRepo:      profileRepo,
		postRepo:         postRepo,
		postSvc:          postSvc,
		replySel:         replySel,
		universeSvc:      universeSvc,
		locker:           locker,
		flagshipContract: strings.ToLower(flagshipContract),
		cfg:              cfg,
		now:              func() time.Time { return time.Now().UTC() },
		sleep:            time.Sleep,
	}
}

// RunTick procesa un tick completo. force saltea la compuerta de
// probabilidad (modo debug). La falla de un personaje se registra en su
// outcome y el tick sigue con el resto.
func (s *SchedulerService) RunTick(ctx context.Context, force bool) (TickReport, error) {
	if s.locker != nil {
		ok, err := s.locker.Acquire(ctx)
		if err != nil {
			return TickReport{}, fmt.Errorf("acquire tick lock: %w", err)
		}
		if !ok {
			return TickReport{}, ErrTickInProgress
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("release tick lock failed", zap.Error(err))
			}
		}()
	}

	report := s.runOnce(ctx, force)
	report.Ticks = 1
	return report, nil
}

// SimulateDay corre DayTicks ticks en una sola invocacion, util para probar
// la interaccion cuota/probabilidad sin esperar al trigger real.
func (s *SchedulerService) SimulateDay(ctx context.Context, force bool) (TickReport, error) {
	if s.locker != nil {
		ok, err := s.locker.Acquire(ctx)
		if err != nil {
			return TickReport{}, fmt.Errorf("acquire tick lock: %w", err)
		}
		if !ok {
			return TickReport{}, ErrTickInProgress
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("release tick lock failed", zap.Error(err))
			}
		}()
	}

	var total TickReport
	for i := 0; i < s.cfg.DayTicks; i++ {
		r := s.runOnce(ctx, force)
		total.Posted += r.Posted
		total.Outcomes = append(total.Outcomes, r.Outcomes...)
		total.Ticks++
	}
	return total, nil
}

func (s *SchedulerService) runOnce(ctx context.Context, force bool) TickReport {
	var report TickReport

	profiles, err := s.profileRepo.ListActivated(ctx, s.flagshipContract)
	if err != nil {
		s.logger.Error("list activated profiles failed", zap.Error(err))
		return report
	}

	var universe *domain.Universe
	if s.universeSvc != nil {
		if u, err := s.universeSvc.GetOrFetch(ctx, s.flagshipContract); err == nil {
			universe = &u
		}
	}

	for i := range profiles {
		outcome := s.processCharacter(ctx, &profiles[i], universe, force)
		report.Outcomes = append(report.Outcomes, outcome)
		if outcome.Status == outcomePosted {
			report.Posted++
		}
		if outcome.Error != "" {
			s.logger.Warn("character tick failed",
				zap.String("profile_id", profiles[i].ID),
				zap.String("error", outcome.Error),
			)
		}
		// Cortesia operativa con los rate limits del generador.
		if s.cfg.InterCharacterDelay > 0 && i < len(profiles)-1 {
			s.sleep(s.cfg.InterCharacterDelay)
		}
	}
	return report
}

func (s *SchedulerService) processCharacter(ctx context.Context, profile *domain.NFTProfile, universe *domain.Universe, force bool) CharacterOutcome {
	outcome := CharacterOutcome{ProfileID: profile.ID}

	midnight := s.midnightUTC()
	originals, replies, err := s.postRepo.CountSinceByProfile(ctx, profile.ID, midnight)
	if err != nil {
		outcome.Status = outcomeError
		outcome.Error = fmt.Sprintf("count today posts: %v", err)
		return outcome
	}

	// Cuotas completas: ni siquiera se llama al generador.
	if originals >= s.cfg.OriginalQuota && replies >= s.cfg.ReplyQuota {
		outcome.Status = outcomeAtQuota
		return outcome
	}

	// Compuerta estocastica que reparte la cuota del dia entre ticks.
	if !force && s.float64() >= s.cfg.PostProbability {
		outcome.Status = outcomeSkippedRandom
		return outcome
	}

	ownPosts, err := s.postRepo.ListRecentByProfile(ctx, profile.ID, 20)
	if err != nil {
		outcome.Status = outcomeError
		outcome.Error = fmt.Sprintf("list own posts: %v", err)
		return outcome
	}
	candidates, err := s.postRepo.ListRecentByContractExcluding(ctx, profile.ContractAddress, profile.ID, maxCandidatesInPrompt)
	if err != nil {
		outcome.Status = outcomeError
		outcome.Error = fmt.Sprintf("list candidate posts: %v", err)
		return outcome
	}

	var thread []domain.Post
	if s.replySel.ShouldAttemptReply(candidates) {
		if target := s.replySel.ChooseReplyTarget(ownPosts, candidates); target != nil {
			thread, err = s.replySel.BuildThreadContext(ctx, *target)
			if err != nil {
				// El hilo es enriquecimiento; sin el se genera igual.
				s.logger.Warn("thread context failed", zap.String("profile_id", profile.ID), zap.Error(err))
				thread = nil
			}
		}
	}

	gen, err := s.postSvc.GeneratePost(ctx, profile, universe, ownPosts, candidates, thread)
	if err != nil {
		outcome.Status = outcomeError
		outcome.Error = err.Error()
		return outcome
	}

	// Reconciliacion de cuotas despues de generar: el modelo no conoce el
	// estado vivo de las cuotas.
	if gen.Type == domain.PostTypeReply && replies >= s.cfg.ReplyQuota {
		if originals < s.cfg.OriginalQuota {
			gen.Type = domain.PostTypeOriginal
			gen.ReplyToPostID = nil
		} else {
			outcome.Status = outcomeSkippedConflict
			return outcome
		}
	}
	if gen.Type == domain.PostTypeOriginal && originals >= s.cfg.OriginalQuota {
		// No se fabrica un reply para gastar esa cuota: que responda en el
		// proximo tick.
		outcome.Status = outcomeSkippedConflict
		return outcome
	}

	moodSeed := gen.Mood
	if gen.Type == domain.PostTypeReply {
		moodSeed = "reply"
	} else if moodSeed == "" {
		moodSeed = "original"
	}

	post := domain.Post{
		ID:            uuid.NewString(),
		ProfileID:     profile.ID,
		Content:       gen.Content,
		MoodSeed:      moodSeed,
		ReplyToPostID: gen.ReplyToPostID,
		CreatedAt:     s.now(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		outcome.Status = outcomeError
		outcome.Error = fmt.Sprintf("persist post: %v", err)
		return outcome
	}

	outcome.Status = outcomePosted
	outcome.PostType = gen.Type
	return outcome
}

func (s *SchedulerService) midnightUTC() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *SchedulerService) float64() float64 {
	if s.rng != nil {
		return s.rng.Float64()
	}
	return rand.Float64()
}
