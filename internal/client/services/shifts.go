package services

import (
	"context"
	"fmt"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/client/repositories/shifts"
	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/logging"
)

// ShiftAPI is the slice of the remote client used by ShiftService.
type ShiftAPI interface {
	ListShifts(ctx context.Context, employeeID string, day time.Time) ([]models.Shift, error)
	ClockIn(ctx context.Context, shiftID string) (models.Shift, error)
	ClockOut(ctx context.Context, shiftID string) (models.Shift, error)
}

// ShiftService serves the schedule and records clock punches. Schedule
// reads prefer the remote store and fall back to the local cache when the
// network is down.
type ShiftService interface {
	Schedule(ctx context.Context, day time.Time) ([]models.Shift, error)
	ClockIn(ctx context.Context, shiftID string) (models.Shift, error)
	ClockOut(ctx context.Context, shiftID string) (models.Shift, error)
}

type shiftService struct {
	api        ShiftAPI
	repo       shifts.Repository
	employeeID string
	log        logging.Logger
}

func NewShiftService(api ShiftAPI, repo shifts.Repository, employeeID string, log logging.Logger) ShiftService {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &shiftService{api: api, repo: repo, employeeID: employeeID, log: log}
}

func (s *shiftService) Schedule(ctx context.Context, day time.Time) ([]models.Shift, error) {
	if s.employeeID == "" {
		return nil, common.ErrNotAuthenticated
	}

	remote, err := s.api.ListShifts(ctx, s.employeeID, day)
	if err != nil {
		// Offline: serve whatever the cache has.
		s.log.Warn(ctx, "shift fetch failed, serving cache", "err", err)
		cached, cacheErr := s.repo.ListByDay(ctx, s.employeeID, day)
		if cacheErr != nil {
			return nil, fmt.Errorf("shift fetch failed and cache unavailable: %w", err)
		}
		return cached, nil
	}

	for i := range remote {
		if err := s.repo.CreateOrUpdate(ctx, &remote[i]); err != nil {
			s.log.Warn(ctx, "failed to cache shift", "shift_id", remote[i].ID, "err", err)
		}
	}
	return remote, nil
}

func (s *shiftService) ClockIn(ctx context.Context, shiftID string) (models.Shift, error) {
	return s.punch(ctx, shiftID, s.api.ClockIn)
}

func (s *shiftService) ClockOut(ctx context.Context, shiftID string) (models.Shift, error) {
	return s.punch(ctx, shiftID, s.api.ClockOut)
}

func (s *shiftService) punch(ctx context.Context, shiftID string, op func(context.Context, string) (models.Shift, error)) (models.Shift, error) {
	if s.employeeID == "" {
		return models.Shift{}, common.ErrNotAuthenticated
	}
	updated, err := op(ctx, shiftID)
	if err != nil {
		return models.Shift{}, fmt.Errorf("recording punch for shift %s: %w", shiftID, err)
	}
	if err := s.repo.CreateOrUpdate(ctx, &updated); err != nil {
		s.log.Warn(ctx, "failed to cache punched shift", "shift_id", shiftID, "err", err)
	}
	return updated, nil
}
