package models

import "time"

// Player - запись ростера: игрок, заявленный в соревновании.
// BasePrice задаёт стартовую цену лота, когда игрок выставляется на аукцион.
type Player struct {
	ID            int       `json:"id" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	FullName      string    `json:"full_name" db:"full_name"`
	Position      string    `json:"position" db:"position"`
	BasePrice     int       `json:"base_price" db:"base_price"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	PhotoKey      *string   `json:"-" db:"photo_key"`
	PhotoURL      *string   `json:"photo_url,omitempty" db:"-"`
}
