package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyg1997/tino/internal/domain"
	"github.com/wyg1997/tino/pkg/cache"
	"github.com/wyg1997/tino/pkg/logger"
)

const languagesKey = "tio:languages"

// LanguageLister is the part of the execution client the repository needs
type LanguageLister interface {
	Languages(ctx context.Context) ([]string, error)
}

// cachedLanguages is what gets persisted; FetchedAt decides freshness
type cachedLanguages struct {
	IDs       []string  `json:"ids"`
	FetchedAt time.Time `json:"fetched_at"`
}

// LanguageRepository loads the supported language list, preferring a fresh
// cached copy and falling back to a stale one when the service is down.
type LanguageRepository struct {
	lister    LanguageLister
	cache     cache.Cache
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	log       logger.Logger
}

// NewLanguageRepository creates a language repository. Entries younger than
// ttl are served without a fetch; entries are kept for retention as a
// fallback.
func NewLanguageRepository(lister LanguageLister, c cache.Cache, ttl, retention time.Duration, log logger.Logger) *LanguageRepository {
	if retention < ttl {
		retention = ttl
	}
	return &LanguageRepository{
		lister:    lister,
		cache:     c,
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
		log:       log.With("languages"),
	}
}

// Load returns the supported language set
func (r *LanguageRepository) Load(ctx context.Context) (domain.SupportedLanguageSet, error) {
	var cached cachedLanguages
	cacheErr := r.cache.Get(languagesKey, &cached)
	if cacheErr == nil && len(cached.IDs) > 0 && r.now().Sub(cached.FetchedAt) < r.ttl {
		r.log.Debug("Using %d cached languages fetched at %s", len(cached.IDs), cached.FetchedAt.Format(time.RFC3339))
		return domain.NewSupportedLanguageSet(cached.IDs), nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, cache.ErrNotFound) && !errors.Is(cacheErr, cache.ErrExpired) {
		r.log.Warn("Failed to read language cache: %v", cacheErr)
	}

	ids, err := r.lister.Languages(ctx)
	if err == nil && len(ids) > 0 {
		fresh := cachedLanguages{IDs: ids, FetchedAt: r.now()}
		if err := r.cache.Set(languagesKey, fresh, r.retention); err != nil {
			r.log.Warn("Failed to persist language list: %v", err)
		}
		r.log.Info("Loaded %d languages from the execution service", len(ids))
		return domain.NewSupportedLanguageSet(ids), nil
	}
	if err == nil {
		err = domain.ErrEmptyLanguageSet
	}

	if cacheErr == nil && len(cached.IDs) > 0 {
		r.log.Warn("Failed to fetch languages (%v), using cached list from %s", err, cached.FetchedAt.Format(time.RFC3339))
		return domain.NewSupportedLanguageSet(cached.IDs), nil
	}

	return domain.SupportedLanguageSet{}, fmt.Errorf("load languages: %w", err)
}
