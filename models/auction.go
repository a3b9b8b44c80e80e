package models

import "time"

// AuctionStatus соответствует ENUM auction_status в БД.
type AuctionStatus string

const (
	AuctionDraft     AuctionStatus = "draft"
	AuctionActive    AuctionStatus = "active"
	AuctionPaused    AuctionStatus = "paused"
	AuctionCompleted AuctionStatus = "completed"
)

// LotStatus соответствует ENUM lot_status в БД.
type LotStatus string

const (
	LotPending LotStatus = "pending"
	LotActive  LotStatus = "active"
	LotSold    LotStatus = "sold"
	LotUnsold  LotStatus = "unsold"
)

// Auction - персистентная запись аукционной сессии. Живое состояние комнаты
// держит движок (пакет auction); здесь только то, что нужно для рестарта.
type Auction struct {
	ID            int           `json:"id" db:"id"`
	CompetitionID int           `json:"competition_id" db:"competition_id"`
	Name          string        `json:"name" db:"name"`
	Status        AuctionStatus `json:"status" db:"status"`
	DefaultBudget int           `json:"default_budget" db:"default_budget"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`

	Lots []AuctionLot `json:"lots,omitempty" db:"-"`
}

// AuctionLot - строка очереди аукциона; порядок задаётся queue_order и
// никогда не меняется после создания.
type AuctionLot struct {
	ID         int       `json:"id" db:"id"`
	AuctionID  int       `json:"auction_id" db:"auction_id"`
	PlayerID   int       `json:"player_id" db:"player_id"`
	QueueOrder int       `json:"queue_order" db:"queue_order"`
	BasePrice  int       `json:"base_price" db:"base_price"`
	Status     LotStatus `json:"status" db:"status"`
	SoldToUser *int      `json:"sold_to_user,omitempty" db:"sold_to_user"`
	SoldTeam   *string   `json:"sold_team,omitempty" db:"sold_team"`
	SoldPrice  *int      `json:"sold_price,omitempty" db:"sold_price"`

	Player *Player `json:"player,omitempty" db:"-"`
}
