package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Toleubekov/auction-system/models"
	"github.com/Toleubekov/auction-system/repositories"
)

type CreateAuctionInput struct {
	CompetitionID int    `json:"competition_id"`
	Name          string `json:"name"`
	DefaultBudget int    `json:"default_budget"`
}

// AuctionService создаёт и отдаёт конфигурацию аукционов. Живыми торгами
// занимается движок (пакет auction), который читает конфигурацию напрямую
// через auction.PoolLoader.
type AuctionService interface {
	Create(ctx context.Context, currentUserID int, input CreateAuctionInput) (*models.Auction, error)
	GetByID(ctx context.Context, id int) (*models.Auction, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Auction, error)
}

type auctionService struct {
	auctionRepo     repositories.AuctionRepository
	playerRepo      repositories.PlayerRepository
	competitionRepo repositories.CompetitionRepository
	defaultBudget   int
}

func NewAuctionService(
	auctionRepo repositories.AuctionRepository,
	playerRepo repositories.PlayerRepository,
	competitionRepo repositories.CompetitionRepository,
	defaultBudget int,
) AuctionService {
	return &auctionService{
		auctionRepo:     auctionRepo,
		playerRepo:      playerRepo,
		competitionRepo: competitionRepo,
		defaultBudget:   defaultBudget,
	}
}

// Create собирает черновик аукциона из пула игроков соревнования. Очередь
// лотов фиксируется в момент создания в порядке ростера.
func (s *auctionService) Create(ctx context.Context, currentUserID int, input CreateAuctionInput) (*models.Auction, error) {
	c, err := s.competitionRepo.GetByID(ctx, input.CompetitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	if c.OrganizerID != currentUserID {
		return nil, ErrForbiddenOperation
	}

	budget := input.DefaultBudget
	if budget == 0 {
		budget = s.defaultBudget
	}
	if budget <= 0 {
		return nil, ErrAuctionInvalidBudget
	}

	players, err := s.playerRepo.ListByCompetition(ctx, input.CompetitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player pool: %w", err)
	}
	if len(players) == 0 {
		return nil, ErrAuctionEmptyPool
	}

	name := input.Name
	if name == "" {
		name = c.Name + " player auction"
	}

	a := &models.Auction{
		CompetitionID: input.CompetitionID,
		Name:          name,
		Status:        models.AuctionDraft,
		DefaultBudget: budget,
	}
	if err := s.auctionRepo.CreateWithLots(ctx, a, players); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}
	return a, nil
}

func (s *auctionService) GetByID(ctx context.Context, id int) (*models.Auction, error) {
	a, err := s.auctionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAuctionNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *auctionService) ListByCompetition(ctx context.Context, competitionID int) ([]models.Auction, error) {
	auctions, err := s.auctionRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	return auctions, nil
}
