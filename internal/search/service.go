package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"lagospaces/server/internal/cache"
	"lagospaces/server/internal/models"
)

const cachePrefix = "search:"

// PropertySource supplies the full property set that searches run over
type PropertySource interface {
	GetAllProperties() ([]models.Property, error)
}

// Result is one page of search results
type Result struct {
	Properties    []models.Property `json:"properties"`
	Total         int               `json:"total"`
	ActiveFilters int               `json:"active_filters"`
}

type Service struct {
	source PropertySource
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

func NewService(source PropertySource, c cache.Cache, ttl time.Duration, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &Service{
		source: source,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Search filters the whole property set. Only the ids of the matches are cached per
// normalised criteria; the listings themselves are always read fresh from the source so
// likes and other counters are current. A cache failure falls back to filtering.
func (s *Service) Search(ctx context.Context, criteria *models.SearchCriteria) (*Result, error) {
	all, err := s.source.GetAllProperties()
	if err != nil {
		return nil, err
	}

	key := cache.Key(cachePrefix, Values(criteria))
	matched, hit := s.cached(ctx, key, all)
	if !hit {
		matched = Filter(all, criteria)
		s.store(ctx, key, matched)
	}

	result := &Result{
		Properties:    matched,
		Total:         len(matched),
		ActiveFilters: criteria.ActiveFilterCount(),
	}

	s.logger.WithFields(logrus.Fields{
		"total":          result.Total,
		"active_filters": result.ActiveFilters,
		"cached":         hit,
	}).Debug("Search completed")

	return result, nil
}

// cached resolves the ids stored under key against the current property set. Ids of
// listings that no longer exist are dropped.
func (s *Service) cached(ctx context.Context, key string, all []models.Property) ([]models.Property, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Search cache lookup failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.WithField("key", key).Warn("Discarding undecodable cached search result")
		return nil, false
	}

	byID := make(map[string]int, len(all))
	for i := range all {
		byID[all[i].ID] = i
	}
	matched := make([]models.Property, 0, len(ids))
	for _, id := range ids {
		if i, ok := byID[id]; ok {
			matched = append(matched, all[i])
		}
	}
	return matched, true
}

func (s *Service) store(ctx context.Context, key string, matched []models.Property) {
	ids := make([]string, len(matched))
	for i := range matched {
		ids[i] = matched[i].ID
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Failed to cache search result")
	}
}

// Invalidate drops every cached search result
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.DeletePrefix(ctx, cachePrefix)
}
