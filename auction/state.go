package auction

import (
	"time"
)

// Role определяет, от чьего имени открыто соединение с комнатой.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleBidder Role = "bidder"
	RoleViewer Role = "viewer"
)

// Status представляет статусы аукционной сессии.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// LotStatus представляет статусы лота.
type LotStatus string

const (
	LotPending LotStatus = "pending"
	LotActive  LotStatus = "active"
	LotSold    LotStatus = "sold"
	LotUnsold  LotStatus = "unsold"
)

// Approval представляет статус допуска участника к торгам.
type Approval string

const (
	ApprovalPending  Approval = "pending"
	ApprovalApproved Approval = "approved"
	ApprovalRejected Approval = "rejected"
)

// Lot - игрок, выставляемый на торги. CurrentPrice не убывает после начала
// торгов; SoldPrice фиксируется в момент продажи и больше не меняется.
type Lot struct {
	PlayerID      int       `json:"player_id"`
	PlayerName    string    `json:"player_name"`
	Position      string    `json:"position,omitempty"`
	BasePrice     int       `json:"base_price"`
	CurrentPrice  int       `json:"current_price"`
	Status        LotStatus `json:"status"`
	LeadingBidder int       `json:"leading_bidder,omitempty"`
	SoldTo        int       `json:"sold_to,omitempty"`
	SoldTeam      string    `json:"sold_team,omitempty"`
	SoldPrice     int       `json:"sold_price,omitempty"`
}

type WonLot struct {
	PlayerID int `json:"player_id"`
	Price    int `json:"price"`
}

// Bidder - участник торгов. RemainingBudget уменьшается только на SoldPrice
// в момент продажи лота этому участнику и никогда не уходит в минус.
type Bidder struct {
	ID              int      `json:"id"`
	DisplayName     string   `json:"display_name"`
	TeamName        string   `json:"team_name"`
	Approval        Approval `json:"approval_status"`
	InitialBudget   int      `json:"initial_budget"`
	RemainingBudget int      `json:"remaining_budget"`
	WonLots         []WonLot `json:"won_lots"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderRole Role      `json:"sender_role"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// auctionState - всё изменяемое состояние одной комнаты. Им владеет
// исключительно цикл комнаты; никакой другой код его не трогает.
type auctionState struct {
	id            int
	name          string
	status        Status
	defaultBudget int

	queue   []*Lot // порядок вставки == порядок торгов, не переупорядочивается
	current *Lot   // nil, когда нет лота на торгах

	bidders     map[int]*Bidder
	bidderOrder []int // порядок появления, для стабильных снапшотов

	chat []ChatMessage
}

func newState(setup *Setup) *auctionState {
	st := &auctionState{
		id:            setup.ID,
		name:          setup.Name,
		status:        setup.Status,
		defaultBudget: setup.DefaultBudget,
		bidders:       make(map[int]*Bidder),
	}
	if st.status == "" {
		st.status = StatusDraft
	}
	for _, l := range setup.Lots {
		lot := &Lot{
			PlayerID:     l.PlayerID,
			PlayerName:   l.PlayerName,
			Position:     l.Position,
			BasePrice:    l.BasePrice,
			CurrentPrice: l.BasePrice,
			Status:       l.Status,
		}
		if lot.Status == "" {
			lot.Status = LotPending
		}
		if lot.Status == LotSold {
			lot.SoldTo = l.SoldTo
			lot.SoldTeam = l.SoldTeam
			lot.SoldPrice = l.SoldPrice
			lot.CurrentPrice = l.SoldPrice
		}
		// Активный лот не переживает рестарт процесса: торги по нему
		// начинаются заново.
		if lot.Status == LotActive {
			lot.Status = LotPending
		}
		st.queue = append(st.queue, lot)
	}
	return st
}

// nextPending возвращает первый лот в исходном порядке очереди,
// ещё не побывавший на торгах.
func (st *auctionState) nextPending() *Lot {
	for _, l := range st.queue {
		if l.Status == LotPending {
			return l
		}
	}
	return nil
}

// ensureBidder возвращает участника по идентификатору, создавая запись со
// статусом pending при первой попытке входа. Выигранные лоты и остаток
// бюджета восстанавливаются из очереди - это покрывает рестарт процесса.
func (st *auctionState) ensureBidder(id int, displayName, teamName string) (*Bidder, bool) {
	if b, ok := st.bidders[id]; ok {
		return b, false
	}
	b := &Bidder{
		ID:              id,
		DisplayName:     displayName,
		TeamName:        teamName,
		Approval:        ApprovalPending,
		InitialBudget:   st.defaultBudget,
		RemainingBudget: st.defaultBudget,
		WonLots:         []WonLot{},
	}
	for _, l := range st.queue {
		if l.Status == LotSold && l.SoldTo == id {
			b.WonLots = append(b.WonLots, WonLot{PlayerID: l.PlayerID, Price: l.SoldPrice})
			b.RemainingBudget -= l.SoldPrice
		}
	}
	st.bidders[id] = b
	st.bidderOrder = append(st.bidderOrder, id)
	return b, true
}

func (st *auctionState) bidderList() []Bidder {
	out := make([]Bidder, 0, len(st.bidderOrder))
	for _, id := range st.bidderOrder {
		out = append(out, copyBidder(st.bidders[id]))
	}
	return out
}

func copyBidder(b *Bidder) Bidder {
	c := *b
	c.WonLots = append([]WonLot(nil), b.WonLots...)
	return c
}

// AuctionView - сериализуемое представление аукциона внутри снапшота.
type AuctionView struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Status          Status `json:"status"`
	CurrentPlayerID int    `json:"current_player_id,omitempty"`
	Players         []Lot  `json:"players"`
}

// snapshot собирает полное согласованное представление комнаты. Это
// единственный механизм схождения для переподключений и поздних входов,
// поэтому он выводится только из текущего состояния, без журнала событий.
func (st *auctionState) snapshot() StateEvent {
	view := AuctionView{
		ID:      st.id,
		Name:    st.name,
		Status:  st.status,
		Players: make([]Lot, 0, len(st.queue)),
	}
	if st.current != nil {
		view.CurrentPlayerID = st.current.PlayerID
	}
	for _, l := range st.queue {
		view.Players = append(view.Players, *l)
	}
	return StateEvent{
		Auction:  view,
		Bidders:  st.bidderList(),
		Messages: append([]ChatMessage(nil), st.chat...),
	}
}
