package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/Toleubekov/auction-system/models"
	"github.com/Toleubekov/auction-system/repositories"
	"github.com/Toleubekov/auction-system/storage"
	"github.com/google/uuid"
)

type CompetitionService interface {
	Create(ctx context.Context, organizerID int, competition *models.Competition) error
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	List(ctx context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error)
	Update(ctx context.Context, currentUserID int, competition *models.Competition) error
	UpdateStatus(ctx context.Context, currentUserID, id int, status models.CompetitionStatus) error
	UploadLogo(ctx context.Context, currentUserID, id int, contentType string, file io.Reader) (*models.Competition, error)
	Delete(ctx context.Context, currentUserID, id int) error
}

type competitionService struct {
	competitionRepo repositories.CompetitionRepository
	trophyRepo      repositories.TrophyRepository
	standingRepo    repositories.StandingRepository
	uploader        storage.FileUploader
}

func NewCompetitionService(
	competitionRepo repositories.CompetitionRepository,
	trophyRepo repositories.TrophyRepository,
	standingRepo repositories.StandingRepository,
	uploader storage.FileUploader,
) CompetitionService {
	return &competitionService{
		competitionRepo: competitionRepo,
		trophyRepo:      trophyRepo,
		standingRepo:    standingRepo,
		uploader:        uploader,
	}
}

func (s *competitionService) Create(ctx context.Context, organizerID int, c *models.Competition) error {
	if c.Name == "" {
		return ErrCompetitionNameRequired
	}
	if !c.EndDate.After(c.StartDate) {
		return ErrCompetitionInvalidDateRange
	}

	c.OrganizerID = organizerID
	if c.Status == "" {
		c.Status = models.CompetitionSoon
	}
	if !isValidCompetitionStatus(c.Status) {
		return ErrCompetitionInvalidStatus
	}

	if err := s.competitionRepo.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNameConflict) {
			return ErrCompetitionNameConflict
		}
		return fmt.Errorf("failed to create competition: %w", err)
	}
	return nil
}

func (s *competitionService) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	c, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	if trophies, err := s.trophyRepo.ListByCompetition(ctx, id); err == nil {
		c.Trophies = trophies
	}
	if standings, err := s.standingRepo.ListByCompetition(ctx, id); err == nil {
		c.Standings = standings
	}

	s.fillLogoURL(c)
	return c, nil
}

func (s *competitionService) List(ctx context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error) {
	competitions, err := s.competitionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	for i := range competitions {
		s.fillLogoURL(&competitions[i])
	}
	return competitions, nil
}

func (s *competitionService) Update(ctx context.Context, currentUserID int, c *models.Competition) error {
	existing, err := s.ownedCompetition(ctx, currentUserID, c.ID)
	if err != nil {
		return err
	}
	if c.Name == "" {
		return ErrCompetitionNameRequired
	}
	if !c.EndDate.After(c.StartDate) {
		return ErrCompetitionInvalidDateRange
	}
	c.OrganizerID = existing.OrganizerID
	c.Status = existing.Status

	if err := s.competitionRepo.Update(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNameConflict) {
			return ErrCompetitionNameConflict
		}
		return fmt.Errorf("failed to update competition: %w", err)
	}
	return nil
}

// UpdateStatus проверяет допустимость перехода статуса перед записью.
func (s *competitionService) UpdateStatus(ctx context.Context, currentUserID, id int, status models.CompetitionStatus) error {
	existing, err := s.ownedCompetition(ctx, currentUserID, id)
	if err != nil {
		return err
	}
	if !isValidCompetitionStatus(status) {
		return ErrCompetitionInvalidStatus
	}
	if !isValidStatusTransition(existing.Status, status) {
		return ErrCompetitionInvalidStatusTransition
	}
	return s.competitionRepo.UpdateStatus(ctx, nil, id, status)
}

func (s *competitionService) UploadLogo(ctx context.Context, currentUserID, id int, contentType string, file io.Reader) (*models.Competition, error) {
	c, err := s.ownedCompetition(ctx, currentUserID, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("competitions", fmt.Sprintf("%d", id), "logo_"+uuid.NewString())
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload competition logo: %w", err)
	}

	if c.LogoKey != nil {
		// Старый логотип больше не нужен; ошибка удаления не критична.
		_ = s.uploader.Delete(ctx, *c.LogoKey)
	}

	if err := s.competitionRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}
	c.LogoKey = &key
	s.fillLogoURL(c)
	return c, nil
}

func (s *competitionService) Delete(ctx context.Context, currentUserID, id int) error {
	if _, err := s.ownedCompetition(ctx, currentUserID, id); err != nil {
		return err
	}
	if err := s.standingRepo.DeleteByCompetition(ctx, id); err != nil {
		return err
	}
	return s.competitionRepo.Delete(ctx, id)
}

func (s *competitionService) ownedCompetition(ctx context.Context, currentUserID, id int) (*models.Competition, error) {
	c, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	if c.OrganizerID != currentUserID {
		return nil, ErrForbiddenOperation
	}
	return c, nil
}

func (s *competitionService) fillLogoURL(c *models.Competition) {
	if c.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*c.LogoKey)
		c.LogoURL = &url
	}
}

func isValidCompetitionStatus(status models.CompetitionStatus) bool {
	switch status {
	case models.CompetitionSoon, models.CompetitionRegistration, models.CompetitionActive,
		models.CompetitionCompleted, models.CompetitionCanceled:
		return true
	}
	return false
}

// isValidStatusTransition описывает жизненный цикл соревнования:
// soon → registration → active → completed, отмена возможна до завершения.
func isValidStatusTransition(from, to models.CompetitionStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.CompetitionSoon:
		return to == models.CompetitionRegistration || to == models.CompetitionCanceled
	case models.CompetitionRegistration:
		return to == models.CompetitionActive || to == models.CompetitionCanceled
	case models.CompetitionActive:
		return to == models.CompetitionCompleted || to == models.CompetitionCanceled
	default:
		return false
	}
}
