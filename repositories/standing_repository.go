package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Toleubekov/auction-system/models"
)

var ErrStandingNotFound = errors.New("standing not found")

type StandingRepository interface {
	Upsert(ctx context.Context, standing *models.Standing) error
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Standing, error)
	DeleteByCompetition(ctx context.Context, competitionID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

// Upsert вставляет или обновляет строку таблицы по (competition_id, team_name).
func (r *postgresStandingRepository) Upsert(ctx context.Context, s *models.Standing) error {
	s.ScoreDifference = s.ScoreFor - s.ScoreAgainst
	query := `
		INSERT INTO standings (
			competition_id, team_name, points, games_played,
			wins, draws, losses, score_for, score_against, score_difference, rank
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (competition_id, team_name) DO UPDATE SET
			points = EXCLUDED.points,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			draws = EXCLUDED.draws,
			losses = EXCLUDED.losses,
			score_for = EXCLUDED.score_for,
			score_against = EXCLUDED.score_against,
			score_difference = EXCLUDED.score_difference,
			rank = EXCLUDED.rank,
			updated_at = NOW()
		RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.CompetitionID, s.TeamName, s.Points, s.GamesPlayed,
		s.Wins, s.Draws, s.Losses, s.ScoreFor, s.ScoreAgainst, s.ScoreDifference, s.Rank,
	).Scan(&s.ID, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("standing repository: %w", err)
	}
	return nil
}

func (r *postgresStandingRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Standing, error) {
	query := `
		SELECT id, competition_id, team_name, points, games_played,
		       wins, draws, losses, score_for, score_against, score_difference, rank, updated_at
		FROM standings
		WHERE competition_id = $1
		ORDER BY points DESC, score_difference DESC, score_for DESC, team_name`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.Standing, 0)
	for rows.Next() {
		var s models.Standing
		if scanErr := rows.Scan(
			&s.ID, &s.CompetitionID, &s.TeamName, &s.Points, &s.GamesPlayed,
			&s.Wins, &s.Draws, &s.Losses, &s.ScoreFor, &s.ScoreAgainst, &s.ScoreDifference, &s.Rank, &s.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func (r *postgresStandingRepository) DeleteByCompetition(ctx context.Context, competitionID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM standings WHERE competition_id = $1`, competitionID)
	if err != nil {
		return fmt.Errorf("standing repository: %w", err)
	}
	return nil
}
