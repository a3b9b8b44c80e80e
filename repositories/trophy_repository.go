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
	ErrTrophyNotFound           = errors.New("trophy not found")
	ErrTrophyInvalidCompetition = errors.New("invalid competition reference")
)

type TrophyRepository interface {
	Create(ctx context.Context, trophy *models.Trophy) error
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Trophy, error)
	Delete(ctx context.Context, id int) error
}

type postgresTrophyRepository struct {
	db *sql.DB
}

func NewPostgresTrophyRepository(db *sql.DB) TrophyRepository {
	return &postgresTrophyRepository{db: db}
}

func (r *postgresTrophyRepository) Create(ctx context.Context, t *models.Trophy) error {
	query := `
		INSERT INTO trophies (competition_id, name, season, winner_team)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.CompetitionID, t.Name, t.Season, t.WinnerTeam,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrTrophyInvalidCompetition
		}
		return fmt.Errorf("trophy repository: %w", err)
	}
	return nil
}

func (r *postgresTrophyRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Trophy, error) {
	query := `
		SELECT id, competition_id, name, season, winner_team, created_at
		FROM trophies
		WHERE competition_id = $1
		ORDER BY season DESC, id`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trophies := make([]models.Trophy, 0)
	for rows.Next() {
		var t models.Trophy
		if scanErr := rows.Scan(&t.ID, &t.CompetitionID, &t.Name, &t.Season, &t.WinnerTeam, &t.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		trophies = append(trophies, t)
	}
	return trophies, rows.Err()
}

func (r *postgresTrophyRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trophies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("trophy repository: %w", err)
	}
	return checkAffectedRows(result, ErrTrophyNotFound)
}
