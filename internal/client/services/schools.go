// Package services holds the client-side application services: thin
// orchestration between the remote CrewDesk API and the local caches.
package services

import (
	"context"
	"fmt"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/client/repositories/schools"
	"github.com/crewdesk-app/crewdesk/internal/logging"
)

// SchoolAPI is the slice of the remote client used by SchoolService.
type SchoolAPI interface {
	ListSchools(ctx context.Context) ([]models.School, error)
	GetSchool(ctx context.Context, id string) (models.School, error)
}

// SchoolService serves school data from the local cache, refreshing it from
// the remote store on demand.
type SchoolService interface {
	// List returns cached schools; if the cache is empty it refreshes first.
	List(ctx context.Context) ([]models.School, error)

	// Get returns one school, preferring the cache and falling back to the
	// remote store (caching the result).
	Get(ctx context.Context, id string) (*models.School, error)

	// Refresh replaces the cache with the remote list.
	Refresh(ctx context.Context) error
}

type schoolService struct {
	api  SchoolAPI
	repo schools.Repository
	log  logging.Logger
}

func NewSchoolService(api SchoolAPI, repo schools.Repository, log logging.Logger) SchoolService {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &schoolService{api: api, repo: repo, log: log}
}

func (s *schoolService) List(ctx context.Context) ([]models.School, error) {
	cached, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading schools cache: %w", err)
	}
	if len(cached) > 0 {
		return cached, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx)
}

func (s *schoolService) Get(ctx context.Context, id string) (*models.School, error) {
	cached, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return cached, nil
	}

	remote, err := s.api.GetSchool(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching school %s: %w", id, err)
	}
	if err := s.repo.CreateOrUpdate(ctx, &remote); err != nil {
		s.log.Warn(ctx, "failed to cache school", "school_id", id, "err", err)
	}
	return &remote, nil
}

func (s *schoolService) Refresh(ctx context.Context) error {
	list, err := s.api.ListSchools(ctx)
	if err != nil {
		return fmt.Errorf("refreshing schools: %w", err)
	}
	if err := s.repo.ReplaceAll(ctx, list); err != nil {
		return fmt.Errorf("replacing schools cache: %w", err)
	}
	s.log.Debug(ctx, "schools cache refreshed", "count", len(list))
	return nil
}
