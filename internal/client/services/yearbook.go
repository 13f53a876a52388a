package services

import (
	"context"
	"fmt"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
)

// ChecklistAPI is the slice of the remote client used by YearbookService.
type ChecklistAPI interface {
	ListChecklist(ctx context.Context, schoolID string) ([]models.ChecklistEntry, error)
	SetChecklistDone(ctx context.Context, entryID string, done bool) (models.ChecklistEntry, error)
}

// YearbookService drives the photo checklist screen for a school.
type YearbookService interface {
	Checklist(ctx context.Context, schoolID string) ([]models.ChecklistEntry, error)
	Toggle(ctx context.Context, entryID string, done bool) (models.ChecklistEntry, error)

	// Progress reports done vs total for a school's checklist.
	Progress(ctx context.Context, schoolID string) (done, total int, err error)
}

type yearbookService struct {
	api ChecklistAPI
}

func NewYearbookService(api ChecklistAPI) YearbookService {
	return &yearbookService{api: api}
}

func (s *yearbookService) Checklist(ctx context.Context, schoolID string) ([]models.ChecklistEntry, error) {
	entries, err := s.api.ListChecklist(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("loading checklist for school %s: %w", schoolID, err)
	}
	return entries, nil
}

func (s *yearbookService) Toggle(ctx context.Context, entryID string, done bool) (models.ChecklistEntry, error) {
	entry, err := s.api.SetChecklistDone(ctx, entryID, done)
	if err != nil {
		return models.ChecklistEntry{}, fmt.Errorf("updating checklist entry %s: %w", entryID, err)
	}
	return entry, nil
}

func (s *yearbookService) Progress(ctx context.Context, schoolID string) (int, int, error) {
	entries, err := s.Checklist(ctx, schoolID)
	if err != nil {
		return 0, 0, err
	}
	done := 0
	for _, e := range entries {
		if e.Done {
			done++
		}
	}
	return done, len(entries), nil
}
