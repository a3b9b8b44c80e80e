package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Toleubekov/auction-system/models"
	"github.com/Toleubekov/auction-system/repositories"
)

type StandingService interface {
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Standing, error)
	Upsert(ctx context.Context, currentUserID int, standing *models.Standing) error
}

type standingService struct {
	standingRepo    repositories.StandingRepository
	competitionRepo repositories.CompetitionRepository
}

func NewStandingService(standingRepo repositories.StandingRepository, competitionRepo repositories.CompetitionRepository) StandingService {
	return &standingService{standingRepo: standingRepo, competitionRepo: competitionRepo}
}

// ListByCompetition возвращает таблицу, ранжированную по очкам, разнице
// и забитым - ранги присваиваются на чтении, а не хранятся.
func (s *standingService) ListByCompetition(ctx context.Context, competitionID int) ([]models.Standing, error) {
	standings, err := s.standingRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		if standings[i].ScoreDifference != standings[j].ScoreDifference {
			return standings[i].ScoreDifference > standings[j].ScoreDifference
		}
		return standings[i].ScoreFor > standings[j].ScoreFor
	})
	for i := range standings {
		rank := i + 1
		standings[i].Rank = &rank
	}
	return standings, nil
}

func (s *standingService) Upsert(ctx context.Context, currentUserID int, st *models.Standing) error {
	if st.TeamName == "" {
		return fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	c, err := s.competitionRepo.GetByID(ctx, st.CompetitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}
		return err
	}
	if c.OrganizerID != currentUserID {
		return ErrForbiddenOperation
	}
	if err := s.standingRepo.Upsert(ctx, st); err != nil {
		return fmt.Errorf("failed to upsert standing: %w", err)
	}
	return nil
}
