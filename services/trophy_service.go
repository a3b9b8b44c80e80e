package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Toleubekov/auction-system/models"
	"github.com/Toleubekov/auction-system/repositories"
)

type TrophyService interface {
	Create(ctx context.Context, currentUserID int, trophy *models.Trophy) error
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Trophy, error)
	Delete(ctx context.Context, currentUserID, competitionID, id int) error
}

type trophyService struct {
	trophyRepo      repositories.TrophyRepository
	competitionRepo repositories.CompetitionRepository
}

func NewTrophyService(trophyRepo repositories.TrophyRepository, competitionRepo repositories.CompetitionRepository) TrophyService {
	return &trophyService{trophyRepo: trophyRepo, competitionRepo: competitionRepo}
}

func (s *trophyService) Create(ctx context.Context, currentUserID int, t *models.Trophy) error {
	if t.Name == "" || t.WinnerTeam == "" {
		return fmt.Errorf("%w: trophy name and winner team are required", ErrValidationFailed)
	}
	c, err := s.competitionRepo.GetByID(ctx, t.CompetitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}
		return err
	}
	if c.OrganizerID != currentUserID {
		return ErrForbiddenOperation
	}
	if t.Season == "" {
		t.Season = c.Season
	}
	if err := s.trophyRepo.Create(ctx, t); err != nil {
		return fmt.Errorf("failed to create trophy: %w", err)
	}
	return nil
}

func (s *trophyService) ListByCompetition(ctx context.Context, competitionID int) ([]models.Trophy, error) {
	trophies, err := s.trophyRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trophies: %w", err)
	}
	return trophies, nil
}

func (s *trophyService) Delete(ctx context.Context, currentUserID, competitionID, id int) error {
	c, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}
		return err
	}
	if c.OrganizerID != currentUserID {
		return ErrForbiddenOperation
	}
	if err := s.trophyRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTrophyNotFound) {
			return ErrTrophyNotFound
		}
		return err
	}
	return nil
}
