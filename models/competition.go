package models

import "time"

// CompetitionStatus представляет статусы соревнования, соответствующие ENUM в БД.
type CompetitionStatus string

const (
	CompetitionSoon         CompetitionStatus = "soon"
	CompetitionRegistration CompetitionStatus = "registration"
	CompetitionActive       CompetitionStatus = "active"
	CompetitionCompleted    CompetitionStatus = "completed"
	CompetitionCanceled     CompetitionStatus = "canceled"
)

// Competition представляет соревнование (лигу или турнир одного сезона).
type Competition struct {
	ID          int               `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	Description *string           `json:"description,omitempty" db:"description"`
	Season      string            `json:"season" db:"season"`
	OrganizerID int               `json:"organizer_id" db:"organizer_id"`
	StartDate   time.Time         `json:"start_date" db:"start_date"`
	EndDate     time.Time         `json:"end_date" db:"end_date"`
	Location    *string           `json:"location,omitempty" db:"location"`
	Status      CompetitionStatus `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	LogoKey     *string           `json:"-" db:"logo_key"`
	LogoURL     *string           `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer *User      `json:"organizer,omitempty" db:"-"`
	Players   []Player   `json:"players,omitempty" db:"-"`
	Standings []Standing `json:"standings,omitempty" db:"-"`
	Trophies  []Trophy   `json:"trophies,omitempty" db:"-"`
}
