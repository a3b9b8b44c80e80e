package auction

import "errors"

// Reason - машиночитаемый код отказа, возвращаемый только инициатору команды.
type Reason string

const (
	// Отказы арбитра ставок.
	ReasonStalePrice         Reason = "stale-price"
	ReasonInsufficientBudget Reason = "insufficient-budget"
	ReasonNotApproved        Reason = "not-approved"
	ReasonAuctionPaused      Reason = "auction-paused"
	ReasonNoActiveLot        Reason = "no-active-lot"

	// Отказы прочих команд.
	ReasonNotAuthorized  Reason = "not-authorized"
	ReasonInvalidState   Reason = "invalid-state"
	ReasonLotInProgress  Reason = "lot-in-progress"
	ReasonUnknownBidder  Reason = "unknown-bidder"
	ReasonInvalidMessage Reason = "invalid-message"
	ReasonBadCommand     Reason = "bad-command"
)

// Rejection - отказ команды. Никогда не мутирует состояние и никогда не
// транслируется остальным соединениям комнаты.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return string(r.Reason) + ": " + r.Message
}

func reject(reason Reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}

var (
	// ErrRoomBusy: очередь команд комнаты не приняла команду за отведённый
	// таймаут. Команда считается не случившейся.
	ErrRoomBusy = errors.New("auction: room command queue is full")

	// ErrRoomClosed: комната остановлена, команды больше не принимаются.
	ErrRoomClosed = errors.New("auction: room is closed")
)
