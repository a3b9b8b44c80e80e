package models

import "time"

type Trophy struct {
	ID            int       `json:"id" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	Name          string    `json:"name" db:"name"`
	Season        string    `json:"season" db:"season"`
	WinnerTeam    string    `json:"winner_team" db:"winner_team"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
