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

type PlayerService interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	UploadPhoto(ctx context.Context, id int, contentType string, file io.Reader) (*models.Player, error)
	Delete(ctx context.Context, id int) error
}

type playerService struct {
	playerRepo      repositories.PlayerRepository
	competitionRepo repositories.CompetitionRepository
	uploader        storage.FileUploader
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	competitionRepo repositories.CompetitionRepository,
	uploader storage.FileUploader,
) PlayerService {
	return &playerService{
		playerRepo:      playerRepo,
		competitionRepo: competitionRepo,
		uploader:        uploader,
	}
}

func (s *playerService) Create(ctx context.Context, p *models.Player) error {
	if p.FullName == "" {
		return fmt.Errorf("%w: player full name is required", ErrValidationFailed)
	}
	if p.BasePrice < 0 {
		return fmt.Errorf("%w: base price cannot be negative", ErrValidationFailed)
	}
	if _, err := s.competitionRepo.GetByID(ctx, p.CompetitionID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}
		return err
	}
	if err := s.playerRepo.Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	s.fillPhotoURL(p)
	return p, nil
}

func (s *playerService) ListByCompetition(ctx context.Context, competitionID int) ([]models.Player, error) {
	players, err := s.playerRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for i := range players {
		s.fillPhotoURL(&players[i])
	}
	return players, nil
}

func (s *playerService) Update(ctx context.Context, p *models.Player) error {
	if p.FullName == "" {
		return fmt.Errorf("%w: player full name is required", ErrValidationFailed)
	}
	if p.BasePrice < 0 {
		return fmt.Errorf("%w: base price cannot be negative", ErrValidationFailed)
	}
	if err := s.playerRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to update player: %w", err)
	}
	return nil
}

func (s *playerService) UploadPhoto(ctx context.Context, id int, contentType string, file io.Reader) (*models.Player, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("players", fmt.Sprintf("%d", id), "photo_"+uuid.NewString())
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload player photo: %w", err)
	}

	if p.PhotoKey != nil {
		_ = s.uploader.Delete(ctx, *p.PhotoKey)
	}

	if err := s.playerRepo.UpdatePhotoKey(ctx, id, &key); err != nil {
		return nil, err
	}
	p.PhotoKey = &key
	s.fillPhotoURL(p)
	return p, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	return nil
}

func (s *playerService) fillPhotoURL(p *models.Player) {
	if p.PhotoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*p.PhotoKey)
		p.PhotoURL = &url
	}
}
