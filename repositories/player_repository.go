package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Toleubekov/auction-system/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound           = errors.New("player not found")
	ErrPlayerInvalidCompetition = errors.New("invalid competition reference")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (competition_id, full_name, position, base_price, photo_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.CompetitionID, p.FullName, p.Position, p.BasePrice, p.PhotoKey,
	).Scan(&p.ID, &p.CreatedAt)

	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, competition_id, full_name, position, base_price, created_at, photo_key
		FROM players
		WHERE id = $1`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.CompetitionID, &p.FullName, &p.Position, &p.BasePrice, &p.CreatedAt, &p.PhotoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Player, error) {
	query := `
		SELECT id, competition_id, full_name, position, base_price, created_at, photo_key
		FROM players
		WHERE competition_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(
			&p.ID, &p.CompetitionID, &p.FullName, &p.Position, &p.BasePrice, &p.CreatedAt, &p.PhotoKey,
		); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players SET full_name = $1, position = $2, base_price = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, p.FullName, p.Position, p.BasePrice, p.ID)
	if err != nil {
		return handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET photo_key = $1 WHERE id = $2`, photoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update player photo key: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrPlayerInvalidCompetition
	}
	return fmt.Errorf("player repository: %w", err)
}
