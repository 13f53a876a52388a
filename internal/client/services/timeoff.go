package services

import (
	"context"
	"fmt"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/common"
)

// TimeOffAPI is the slice of the remote client used by TimeOffService.
type TimeOffAPI interface {
	ListTimeOff(ctx context.Context, employeeID string) ([]models.TimeOffRequest, error)
	CreateTimeOff(ctx context.Context, req models.TimeOffRequest) (models.TimeOffRequest, error)
	CancelTimeOff(ctx context.Context, id string) error
	PTOBalance(ctx context.Context, employeeID string) (models.PTOBalance, error)
}

// TimeOffService wraps time-off CRUD with the client-side checks the form
// screens rely on. Authoritative validation stays on the server.
type TimeOffService interface {
	List(ctx context.Context) ([]models.TimeOffRequest, error)
	Balance(ctx context.Context) (models.PTOBalance, error)

	// Submit validates the draft request and creates it remotely. For paid
	// requests the remaining PTO balance must cover the requested hours.
	Submit(ctx context.Context, req models.TimeOffRequest) (models.TimeOffRequest, error)

	// Cancel withdraws a request.
	Cancel(ctx context.Context, id string) error
}

type timeOffService struct {
	api        TimeOffAPI
	employeeID string
}

func NewTimeOffService(api TimeOffAPI, employeeID string) TimeOffService {
	return &timeOffService{api: api, employeeID: employeeID}
}

func (s *timeOffService) List(ctx context.Context) ([]models.TimeOffRequest, error) {
	if s.employeeID == "" {
		return nil, common.ErrNotAuthenticated
	}
	return s.api.ListTimeOff(ctx, s.employeeID)
}

func (s *timeOffService) Balance(ctx context.Context) (models.PTOBalance, error) {
	if s.employeeID == "" {
		return models.PTOBalance{}, common.ErrNotAuthenticated
	}
	return s.api.PTOBalance(ctx, s.employeeID)
}

func (s *timeOffService) Submit(ctx context.Context, req models.TimeOffRequest) (models.TimeOffRequest, error) {
	if s.employeeID == "" {
		return models.TimeOffRequest{}, common.ErrNotAuthenticated
	}
	req.EmployeeID = s.employeeID

	if req.Hours <= 0 {
		return models.TimeOffRequest{}, fmt.Errorf("hours must be positive: %w", common.ErrValidation)
	}
	if req.EndDate.Before(req.StartDate) {
		return models.TimeOffRequest{}, fmt.Errorf("end date precedes start date: %w", common.ErrValidation)
	}

	if req.Paid {
		balance, err := s.api.PTOBalance(ctx, s.employeeID)
		if err != nil {
			return models.TimeOffRequest{}, fmt.Errorf("checking balance: %w", err)
		}
		if req.Hours > balance.Available() {
			return models.TimeOffRequest{}, fmt.Errorf("requested %.1fh exceeds available %.1fh: %w",
				req.Hours, balance.Available(), common.ErrValidation)
		}
	}

	created, err := s.api.CreateTimeOff(ctx, req)
	if err != nil {
		return models.TimeOffRequest{}, fmt.Errorf("submitting time-off request: %w", err)
	}
	return created, nil
}

func (s *timeOffService) Cancel(ctx context.Context, id string) error {
	if s.employeeID == "" {
		return common.ErrNotAuthenticated
	}
	if err := s.api.CancelTimeOff(ctx, id); err != nil {
		return fmt.Errorf("canceling time-off request %s: %w", id, err)
	}
	return nil
}
