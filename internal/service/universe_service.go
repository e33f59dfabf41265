package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"soul-feed/internal/domain"
	"soul-feed/internal/repository"
	"soul-feed/internal/scrape"
)

// SiteScraper extrae lore y pistas de tema del sitio de una coleccion.
type SiteScraper interface {
	Scrape(ctx context.Context, url string) (scrape.SiteInfo, error)
}

// UniverseInput es el payload de onboarding de una coleccion.
type UniverseInput struct {
	ContractAddress string            `json:"contract_address"`
	Name            string            `json:"name"`
	World           string            `json:"world,omitempty"`
	Factions        []string          `json:"factions,omitempty"`
	Vocabulary      []string          `json:"vocabulary,omitempty"`
	Wording         map[string]string `json:"wording,omitempty"`
	SiteURL         string            `json:"site_url,omitempty"`
}

// UniverseService administra el lore por coleccion con una cache por delante
// de Postgres: el scheduler lo consulta en cada tick.
type UniverseService struct {
	logger   *zap.Logger
	repo     repository.UniverseRepository
	cache    LoreCache
	scraper  SiteScraper
	cacheTTL time.Duration
}

func NewUniverseService(logger *zap.Logger, repo repository.UniverseRepository, cache LoreCache, scraper SiteScraper) *UniverseService {
	return &UniverseService{
		logger:   logger,
		repo:     repo,
		cache:    cache,
		scraper:  scraper,
		cacheTTL: 15 * time.Minute,
	}
}

// GetOrFetch devuelve el universo de un contrato, sirviendo desde cache
// cuando puede. Los errores de cache se degradan a un miss.
func (s *UniverseService) GetOrFetch(ctx context.Context, contractAddress string) (domain.Universe, error) {
	contractAddress = strings.ToLower(strings.TrimSpace(contractAddress))
	if contractAddress == "" {
		return domain.Universe{}, fmt.Errorf("contract address is required")
	}

	if s.cache != nil {
		raw, hit, err := s.cache.Get(ctx, contractAddress)
		if err != nil {
			s.logger.Warn("lore cache get failed", zap.String("contract", contractAddress), zap.Error(err))
		} else if hit {
			var u domain.Universe
			if err := json.Unmarshal(raw, &u); err == nil {
				return u, nil
			}
			// Entrada corrupta: se pisa con el proximo Set.
		}
	}

	u, err := s.repo.GetByContract(ctx, contractAddress)
	if err != nil {
		return domain.Universe{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(u); err == nil {
			if err := s.cache.Set(ctx, contractAddress, raw, s.cacheTTL); err != nil {
				s.logger.Warn("lore cache set failed", zap.String("contract", contractAddress), zap.Error(err))
			}
		}
	}
	return u, nil
}

// ClearCache invalida la entrada de un contrato; la proxima lectura vuelve
// a Postgres. Pensado para despues de editar el lore a mano.
func (s *UniverseService) ClearCache(ctx context.Context, contractAddress string) error {
	contractAddress = strings.ToLower(strings.TrimSpace(contractAddress))
	if contractAddress == "" {
		return fmt.Errorf("contract address is required")
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, contractAddress)
}

// Onboard registra (o actualiza) el universo de una coleccion. Si viene un
// SiteURL se intenta scrapear lore y tema; la falla del scrape degrada a un
// onboarding sin enriquecer, nunca aborta.
func (s *UniverseService) Onboard(ctx context.Context, input UniverseInput) (domain.Universe, error) {
	contractAddress := strings.ToLower(strings.TrimSpace(input.ContractAddress))
	if contractAddress == "" {
		return domain.Universe{}, fmt.Errorf("contract address is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return domain.Universe{}, fmt.Errorf("universe name is required")
	}

	u := domain.Universe{
		ContractAddress: contractAddress,
		Name:            strings.TrimSpace(input.Name),
		World:           strings.TrimSpace(input.World),
		Factions:        input.Factions,
		Vocabulary:      input.Vocabulary,
		Wording:         input.Wording,
		CreatedAt:       time.Now().UTC(),
	}

	if input.SiteURL != "" && s.scraper != nil {
		info, err := s.scraper.Scrape(ctx, input.SiteURL)
		if err != nil {
			s.logger.Warn("universe site scrape failed",
				zap.String("contract", contractAddress),
				zap.String("url", input.SiteURL),
				zap.Error(err),
			)
		} else {
			applySiteInfo(&u, info)
		}
	}

	if err := s.repo.Upsert(ctx, u); err != nil {
		return domain.Universe{}, fmt.Errorf("persist universe: %w", err)
	}
	if err := s.ClearCache(ctx, contractAddress); err != nil {
		s.logger.Warn("lore cache clear failed", zap.String("contract", contractAddress), zap.Error(err))
	}
	return u, nil
}

// applySiteInfo vuelca lo scrapeado sin pisar lo que el operador escribio.
func applySiteInfo(u *domain.Universe, info scrape.SiteInfo) {
	if u.World == "" && len(info.TextSnippets) > 0 {
		joined := strings.Join(info.TextSnippets, "\n")
		if len(joined) > 2000 {
			joined = joined[:2000]
		}
		u.World = joined
	}
	if len(info.Colors) > 0 {
		u.ThemePrimary = info.Colors[0]
	}
	if len(info.FontFamilies) > 0 {
		u.ThemeFont = info.FontFamilies[0]
	}
}
