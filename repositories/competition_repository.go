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
	ErrCompetitionNotFound     = errors.New("competition not found")
	ErrCompetitionNameConflict = errors.New("competition name conflict for this organizer")
	ErrCompetitionInvalidOrg   = errors.New("invalid organizer reference")
)

type ListCompetitionsFilter struct {
	OrganizerID *int
	Status      *models.CompetitionStatus
	Season      *string
	Limit       int
	Offset      int
}

type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	List(ctx context.Context, filter ListCompetitionsFilter) ([]models.Competition, error)
	Update(ctx context.Context, competition *models.Competition) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.CompetitionStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresCompetitionRepository struct {
	db *sql.DB
}

func NewPostgresCompetitionRepository(db *sql.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions (
			name, description, season, organizer_id,
			start_date, end_date, location, status, logo_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Description, c.Season, c.OrganizerID,
		c.StartDate, c.EndDate, c.Location, c.Status, c.LogoKey,
	).Scan(&c.ID, &c.CreatedAt)

	return handleCompetitionError(err)
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	query := `
		SELECT id, name, description, season, organizer_id,
		       start_date, end_date, location, status, created_at, logo_key
		FROM competitions
		WHERE id = $1`

	c := &models.Competition{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.Season, &c.OrganizerID,
		&c.StartDate, &c.EndDate, &c.Location, &c.Status, &c.CreatedAt, &c.LogoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCompetitionRepository) List(ctx context.Context, filter ListCompetitionsFilter) ([]models.Competition, error) {
	query := `
		SELECT id, name, description, season, organizer_id,
		       start_date, end_date, location, status, created_at, logo_key
		FROM competitions
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Season != nil {
		query += fmt.Sprintf(" AND season = $%d", argID)
		args = append(args, *filter.Season)
		argID++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := make([]models.Competition, 0)
	for rows.Next() {
		var c models.Competition
		if scanErr := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.Season, &c.OrganizerID,
			&c.StartDate, &c.EndDate, &c.Location, &c.Status, &c.CreatedAt, &c.LogoKey,
		); scanErr != nil {
			return nil, scanErr
		}
		competitions = append(competitions, c)
	}
	return competitions, rows.Err()
}

func (r *postgresCompetitionRepository) Update(ctx context.Context, c *models.Competition) error {
	query := `
		UPDATE competitions SET
			name = $1,
			description = $2,
			season = $3,
			start_date = $4,
			end_date = $5,
			location = $6,
			status = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		c.Name, c.Description, c.Season, c.StartDate, c.EndDate, c.Location, c.Status,
		c.ID,
	)
	if err != nil {
		return handleCompetitionError(err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.CompetitionStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE competitions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return handleCompetitionError(err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE competitions SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update competition logo key: %w", err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	if err != nil {
		return handleCompetitionError(err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func handleCompetitionError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrCompetitionNameConflict
		case "23503":
			return ErrCompetitionInvalidOrg
		}
	}
	return fmt.Errorf("competition repository: %w", err)
}
