package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/internal/store"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/models/roster"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RosterCacheKey prefixes the cached roster entries. Bump the version when
// the Roster shape changes.
const RosterCacheKey = "roster:v1"

// RosterGenerationKey counts invalidations. Entries are stored under the
// generation current when their database read started, so a read racing a
// replace can only fill a key nobody looks up again.
const RosterGenerationKey = RosterCacheKey + ":gen"

// RosterEntryKey is the cache key for one generation.
func RosterEntryKey(gen int64) string {
	return fmt.Sprintf("%s:%d", RosterCacheKey, gen)
}

// RosterService reads and replaces the selectable lists. Reads go through a
// Redis cache when one is configured; any cache failure falls back to the
// database.
type RosterService struct {
	store  store.RosterStore
	cache  *redis.Client
	ttl    time.Duration
	policy roster.DuplicatePolicy
	log    *zap.SugaredLogger
}

// NewRosterService creates the service. cache may be nil.
func NewRosterService(st store.RosterStore, cache *redis.Client, ttl time.Duration, policy roster.DuplicatePolicy) *RosterService {
	return &RosterService{
		store:  st,
		cache:  cache,
		ttl:    ttl,
		policy: policy,
		log:    logger.GetLogger().Named("roster"),
	}
}

func (s *RosterService) Policy() roster.DuplicatePolicy {
	return s.policy
}

// GetRoster returns every selectable list.
func (s *RosterService) GetRoster(ctx context.Context) (*types.Roster, error) {
	gen, cacheable := s.generation(ctx)
	if cacheable {
		if r, ok := s.readCache(ctx, gen); ok {
			return r, nil
		}
	}

	r, err := s.store.GetRoster(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	if cacheable {
		s.writeCache(ctx, gen, r)
	}
	return r, nil
}

// GetLists returns the individuals and services lists.
func (s *RosterService) GetLists(ctx context.Context) (*types.ListsResponse, error) {
	r, err := s.GetRoster(ctx)
	if err != nil {
		return nil, err
	}
	return &types.ListsResponse{
		IndividualsList: nonNilIndividuals(r.Individuals),
		ServicesList:    nonNilStrings(r.Services),
	}, nil
}

// ReplaceIndividuals normalizes and stores the whole individuals list.
func (s *RosterService) ReplaceIndividuals(ctx context.Context, list []types.Individual) ([]types.Individual, error) {
	normalized, err := roster.NormalizeIndividuals(list, s.policy)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceIndividuals(ctx, normalized); err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	s.InvalidateCache(ctx)
	s.log.Infow("Replaced individuals list", "count", len(normalized))
	return normalized, nil
}

// ReplaceServices normalizes and stores the whole services list.
func (s *RosterService) ReplaceServices(ctx context.Context, list []string) ([]string, error) {
	return s.ReplaceList(ctx, store.ListServices, list)
}

// ReplaceList normalizes and stores one of the string lists.
func (s *RosterService) ReplaceList(ctx context.Context, name store.ListName, list []string) ([]string, error) {
	normalized, err := roster.NormalizeStrings(list, s.policy)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceList(ctx, name, normalized); err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	s.InvalidateCache(ctx)
	s.log.Infow("Replaced list", "list", name, "count", len(normalized))
	return normalized, nil
}

// InvalidateCache moves readers to a new generation. Failures are logged
// only; the old entry expires on its own.
func (s *RosterService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, RosterGenerationKey).Err(); err != nil {
		s.log.Warnw("Failed to invalidate roster cache", "error", err)
	}
}

func (s *RosterService) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Get(ctx, RosterGenerationKey).Int64()
	switch {
	case err == redis.Nil:
		return 0, true
	case err != nil:
		s.log.Warnw("Roster cache read failed, using database", "error", err)
		return 0, false
	}
	return gen, true
}

func (s *RosterService) readCache(ctx context.Context, gen int64) (*types.Roster, bool) {
	data, err := s.cache.Get(ctx, RosterEntryKey(gen)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warnw("Roster cache read failed, using database", "error", err)
		}
		return nil, false
	}
	var r types.Roster
	if err := json.Unmarshal(data, &r); err != nil {
		s.log.Warnw("Discarding unreadable roster cache entry", "error", err)
		return nil, false
	}
	return &r, true
}

func (s *RosterService) writeCache(ctx context.Context, gen int64, r *types.Roster) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, RosterEntryKey(gen), data, s.ttl).Err(); err != nil {
		s.log.Warnw("Roster cache write failed", "error", err)
	}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilIndividuals(in []types.Individual) []types.Individual {
	if in == nil {
		return []types.Individual{}
	}
	return in
}
