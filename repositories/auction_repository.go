package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Toleubekov/auction-system/auction"
	"github.com/Toleubekov/auction-system/models"
	"github.com/lib/pq"
)

var (
	ErrAuctionNotFound           = errors.New("auction not found")
	ErrAuctionLotNotFound        = errors.New("auction lot not found")
	ErrAuctionInvalidCompetition = errors.New("invalid competition reference")
)

// AuctionRepository хранит конфигурацию аукционов и принимает результаты
// торгов от движка: реализует auction.PoolLoader и auction.ResultSink.
type AuctionRepository interface {
	auction.PoolLoader
	auction.ResultSink

	CreateWithLots(ctx context.Context, a *models.Auction, players []models.Player) error
	GetByID(ctx context.Context, id int) (*models.Auction, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Auction, error)
}

type postgresAuctionRepository struct {
	db *sql.DB
}

func NewPostgresAuctionRepository(db *sql.DB) AuctionRepository {
	return &postgresAuctionRepository{db: db}
}

// CreateWithLots создаёт аукцион и его очередь лотов одной транзакцией.
// Порядок очереди фиксируется на момент создания и больше не меняется.
func (r *postgresAuctionRepository) CreateWithLots(ctx context.Context, a *models.Auction, players []models.Player) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("auction repository: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO auctions (competition_id, name, status, default_budget)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		a.CompetitionID, a.Name, a.Status, a.DefaultBudget,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return handleAuctionError(err)
	}

	lotQuery := `
		INSERT INTO auction_lots (auction_id, player_id, queue_order, base_price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	a.Lots = make([]models.AuctionLot, 0, len(players))
	for i, p := range players {
		lot := models.AuctionLot{
			AuctionID:  a.ID,
			PlayerID:   p.ID,
			QueueOrder: i + 1,
			BasePrice:  p.BasePrice,
			Status:     models.LotPending,
		}
		if err := tx.QueryRowContext(ctx, lotQuery,
			lot.AuctionID, lot.PlayerID, lot.QueueOrder, lot.BasePrice, lot.Status,
		).Scan(&lot.ID); err != nil {
			return handleAuctionError(err)
		}
		a.Lots = append(a.Lots, lot)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("auction repository: commit: %w", err)
	}
	return nil
}

func (r *postgresAuctionRepository) GetByID(ctx context.Context, id int) (*models.Auction, error) {
	query := `
		SELECT id, competition_id, name, status, default_budget, created_at
		FROM auctions
		WHERE id = $1`

	a := &models.Auction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.CompetitionID, &a.Name, &a.Status, &a.DefaultBudget, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}

	lots, err := r.listLots(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Lots = lots
	return a, nil
}

func (r *postgresAuctionRepository) listLots(ctx context.Context, auctionID int) ([]models.AuctionLot, error) {
	query := `
		SELECT l.id, l.auction_id, l.player_id, l.queue_order, l.base_price, l.status,
		       l.sold_to_user, l.sold_team, l.sold_price,
		       p.full_name, p.position
		FROM auction_lots l
		JOIN players p ON p.id = l.player_id
		WHERE l.auction_id = $1
		ORDER BY l.queue_order`

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lots := make([]models.AuctionLot, 0)
	for rows.Next() {
		var l models.AuctionLot
		var fullName, position string
		if scanErr := rows.Scan(
			&l.ID, &l.AuctionID, &l.PlayerID, &l.QueueOrder, &l.BasePrice, &l.Status,
			&l.SoldToUser, &l.SoldTeam, &l.SoldPrice,
			&fullName, &position,
		); scanErr != nil {
			return nil, scanErr
		}
		l.Player = &models.Player{ID: l.PlayerID, FullName: fullName, Position: position, BasePrice: l.BasePrice}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

func (r *postgresAuctionRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Auction, error) {
	query := `
		SELECT id, competition_id, name, status, default_budget, created_at
		FROM auctions
		WHERE competition_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := make([]models.Auction, 0)
	for rows.Next() {
		var a models.Auction
		if scanErr := rows.Scan(&a.ID, &a.CompetitionID, &a.Name, &a.Status, &a.DefaultBudget, &a.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

// LoadAuctionSetup реализует auction.PoolLoader: отдаёт движку конфигурацию
// комнаты вместе с пулом игроков и уже разрешёнными лотами.
func (r *postgresAuctionRepository) LoadAuctionSetup(ctx context.Context, auctionID int) (*auction.Setup, error) {
	a, err := r.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	setup := &auction.Setup{
		ID:            a.ID,
		Name:          a.Name,
		Status:        auction.Status(a.Status),
		DefaultBudget: a.DefaultBudget,
		Lots:          make([]auction.SetupLot, 0, len(a.Lots)),
	}
	for _, l := range a.Lots {
		sl := auction.SetupLot{
			PlayerID:  l.PlayerID,
			BasePrice: l.BasePrice,
			Status:    auction.LotStatus(l.Status),
		}
		if l.Player != nil {
			sl.PlayerName = l.Player.FullName
			sl.Position = l.Player.Position
		}
		if l.SoldToUser != nil {
			sl.SoldTo = *l.SoldToUser
		}
		if l.SoldTeam != nil {
			sl.SoldTeam = *l.SoldTeam
		}
		if l.SoldPrice != nil {
			sl.SoldPrice = *l.SoldPrice
		}
		setup.Lots = append(setup.Lots, sl)
	}
	return setup, nil
}

// SaveLotResult реализует auction.ResultSink.
func (r *postgresAuctionRepository) SaveLotResult(ctx context.Context, auctionID int, lot auction.Lot) error {
	query := `
		UPDATE auction_lots
		SET status = $1, sold_to_user = $2, sold_team = $3, sold_price = $4
		WHERE auction_id = $5 AND player_id = $6`

	var soldTo *int
	var soldTeam *string
	var soldPrice *int
	if lot.Status == auction.LotSold {
		soldTo = &lot.SoldTo
		soldTeam = &lot.SoldTeam
		soldPrice = &lot.SoldPrice
	}

	result, err := r.db.ExecContext(ctx, query,
		string(lot.Status), soldTo, soldTeam, soldPrice, auctionID, lot.PlayerID,
	)
	if err != nil {
		return fmt.Errorf("auction repository: save lot result: %w", err)
	}
	return checkAffectedRows(result, ErrAuctionLotNotFound)
}

// SaveAuctionStatus реализует auction.ResultSink.
func (r *postgresAuctionRepository) SaveAuctionStatus(ctx context.Context, auctionID int, status auction.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE auctions SET status = $1 WHERE id = $2`,
		string(status), auctionID,
	)
	if err != nil {
		return fmt.Errorf("auction repository: save status: %w", err)
	}
	return checkAffectedRows(result, ErrAuctionNotFound)
}

func handleAuctionError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrAuctionInvalidCompetition
	}
	return fmt.Errorf("auction repository: %w", err)
}
