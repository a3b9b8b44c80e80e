package auction

import "encoding/json"

// Event - закрытое множество исходящих сообщений комнаты. Каждый тип несёт
// фиксированную форму полезной нагрузки; на проводе событие завёрнуто в
// конверт {"type": ..., "payload": ...}.
type Event interface {
	EventType() string
}

const (
	EventAuctionState   = "auction-state"
	EventAuctionStarted = "auction-started"
	EventAuctionPaused  = "auction-paused"
	EventPlayerUp       = "player-up-for-bid"
	EventBidPlaced      = "bid-placed"
	EventPlayerSold     = "player-sold"
	EventPlayerUnsold   = "player-unsold"
	EventCompleted      = "auction-completed"
	EventNewMessage     = "new-message"
	EventBidderJoined   = "bidder-joined"
	EventBidderStatus   = "bidder-status-updated"
	EventApprovalStatus = "approval-status"
	EventAuthError      = "auth-error"
	EventBidError       = "bid-error"
	EventCommandError   = "command-error"
)

type eventEnvelope struct {
	Type    string `json:"type"`
	Payload Event  `json:"payload,omitempty"`
}

// EncodeEvent упаковывает событие в конверт {type, payload} для передачи
// по транспорту.
func EncodeEvent(e Event) ([]byte, error) {
	return json.Marshal(eventEnvelope{Type: e.EventType(), Payload: e})
}

// StateEvent - полный снапшот, отправляется только входящему соединению.
type StateEvent struct {
	Auction  AuctionView   `json:"auction"`
	Bidders  []Bidder      `json:"bidders"`
	Messages []ChatMessage `json:"messages"`
}

func (StateEvent) EventType() string { return EventAuctionState }

type StartedEvent struct{}

func (StartedEvent) EventType() string { return EventAuctionStarted }

type PausedEvent struct {
	Paused bool `json:"paused"`
}

func (PausedEvent) EventType() string { return EventAuctionPaused }

type PlayerUpEvent struct {
	Player Lot `json:"player"`
}

func (PlayerUpEvent) EventType() string { return EventPlayerUp }

type BidInfo struct {
	PlayerID int `json:"playerId"`
	Amount   int `json:"amount"`
	BidderID int `json:"bidderId"`
}

type BidPlacedEvent struct {
	Bid BidInfo `json:"bid"`
}

func (BidPlacedEvent) EventType() string { return EventBidPlaced }

type PlayerSoldEvent struct {
	Player    Lot `json:"player"`
	SoldTo    int `json:"soldTo"`
	SoldPrice int `json:"soldPrice"`
}

func (PlayerSoldEvent) EventType() string { return EventPlayerSold }

type PlayerUnsoldEvent struct {
	PlayerID int `json:"playerId"`
}

func (PlayerUnsoldEvent) EventType() string { return EventPlayerUnsold }

type CompletedEvent struct{}

func (CompletedEvent) EventType() string { return EventCompleted }

type NewMessageEvent struct {
	Message ChatMessage `json:"message"`
}

func (NewMessageEvent) EventType() string { return EventNewMessage }

type BidderJoinedEvent struct {
	Bidder Bidder `json:"bidder"`
}

func (BidderJoinedEvent) EventType() string { return EventBidderJoined }

type BidderStatusEvent struct {
	Bidder Bidder `json:"bidder"`
}

func (BidderStatusEvent) EventType() string { return EventBidderStatus }

// ApprovalEvent адресуется только соединениям затронутого участника.
type ApprovalEvent struct {
	Approved bool `json:"approved"`
}

func (ApprovalEvent) EventType() string { return EventApprovalStatus }

// AuthErrorEvent фатален для попытки подключения: клиент должен прекратить
// работу и аутентифицироваться заново.
type AuthErrorEvent struct {
	Message string `json:"message"`
}

func (AuthErrorEvent) EventType() string { return EventAuthError }

// BidErrorEvent - нефатальный отказ по ставке, уходит только инициатору.
type BidErrorEvent struct {
	Code    Reason `json:"code"`
	Message string `json:"message"`
}

func (BidErrorEvent) EventType() string { return EventBidError }

// CommandErrorEvent - отказ по любой другой команде, уходит только инициатору.
type CommandErrorEvent struct {
	Code    Reason `json:"code"`
	Message string `json:"message"`
}

func (CommandErrorEvent) EventType() string { return EventCommandError }
