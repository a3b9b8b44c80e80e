package models

import "time"

type Standing struct {
	ID              int       `json:"id" db:"id"`
	CompetitionID   int       `json:"competition_id" db:"competition_id"`
	TeamName        string    `json:"team_name" db:"team_name"`
	Points          int       `json:"points" db:"points"`
	GamesPlayed     int       `json:"games_played" db:"games_played"`
	Wins            int       `json:"wins" db:"wins"`
	Draws           int       `json:"draws" db:"draws"`
	Losses          int       `json:"losses" db:"losses"`
	ScoreFor        int       `json:"score_for" db:"score_for"`
	ScoreAgainst    int       `json:"score_against" db:"score_against"`
	ScoreDifference int       `json:"score_difference" db:"score_difference"`
	Rank            *int      `json:"rank,omitempty" db:"rank"` // Nullable, can be calculated
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
