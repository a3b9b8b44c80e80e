package auction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	commandQueueSize = 128

	// submitTimeout ограничивает ожидание места в очереди команд. Команда,
	// не принятая за это время, отклоняется, а не висит: точка сериализации
	// комнаты не должна стопориться из-за одного отправителя.
	submitTimeout = 2 * time.Second

	persistTimeout = 5 * time.Second

	maxChatLength = 500
)

// Room - единственный владелец состояния одной аукционной сессии. Все
// команды комнаты обрабатываются одной горутиной строго по одной, в порядке
// поступления в очередь; отдельные комнаты полностью параллельны и не делят
// изменяемое состояние. Внутри цикла нет I/O: пул игроков загружается до
// старта комнаты, а запись результатов уходит побочным эффектом, не
// задерживающим следующую команду.
type Room struct {
	id    int
	state *auctionState
	hub   *hub

	commands chan command
	stop     chan struct{}
	stopOnce sync.Once

	results ResultSink
	logger  *slog.Logger
	onIdle  func(roomID int)
}

func newRoom(setup *Setup, results ResultSink, logger *slog.Logger, onIdle func(int)) *Room {
	return &Room{
		id:       setup.ID,
		state:    newState(setup),
		hub:      newHub(logger),
		commands: make(chan command, commandQueueSize),
		stop:     make(chan struct{}),
		results:  results,
		logger:   logger,
		onIdle:   onIdle,
	}
}

func (r *Room) ID() int { return r.id }

// Attach присоединяет соединение к комнате. Инициатор получает полный
// снапшот; если это первый вход нового участника, остальные получают
// bidder-joined.
func (r *Room) Attach(c *Client) error {
	return r.submit(cmdJoin{c: c})
}

// Detach отсоединяет соединение. Состояние участника (бюджет, выигранные
// лоты) при этом не затрагивается - отбрасывается только соединение.
func (r *Room) Detach(c *Client) error {
	return r.submit(cmdLeave{c: c})
}

// HandleMessage разбирает входящий кадр от соединения и ставит команду в
// очередь комнаты. Нечитаемый кадр превращается в адресный отказ, чтобы
// порядок событий для этого соединения сохранился.
func (r *Room) HandleMessage(c *Client, raw []byte) error {
	cmd, rej := decodeCommand(c, raw)
	if rej != nil {
		return r.submit(cmdReject{c: c, rej: rej})
	}
	return r.submit(cmd)
}

func (r *Room) submit(cmd command) error {
	timer := time.NewTimer(submitTimeout)
	defer timer.Stop()
	select {
	case r.commands <- cmd:
		return nil
	case <-r.stop:
		return ErrRoomClosed
	case <-timer.C:
		return ErrRoomBusy
	}
}

func (r *Room) shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// run - сериализующий цикл комнаты. Никакая ошибка одной команды не
// останавливает цикл; паника обработчика гасится и стоит эффектов только
// самой команде.
func (r *Room) run() {
	for {
		select {
		case <-r.stop:
			r.hub.closeAll()
			return
		case cmd := <-r.commands:
			r.dispatch(cmd)
		}
	}
}

func (r *Room) dispatch(cmd command) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("command handler panicked",
				slog.Any("panic", rec),
				slog.String("command", fmt.Sprintf("%T", cmd)),
			)
			if c := cmd.issuer(); c != nil {
				r.hub.sendTo(c, CommandErrorEvent{Code: ReasonBadCommand, Message: "internal error processing command"})
			}
		}
	}()

	switch cmd := cmd.(type) {
	case cmdJoin:
		r.handleJoin(cmd.c)
	case cmdLeave:
		r.handleLeave(cmd.c)
	case cmdApproveBidder:
		r.handleApprove(cmd.c, cmd.bidderID, cmd.approve)
	case cmdStart:
		r.handleStart(cmd.c)
	case cmdPause:
		r.handlePause(cmd.c, cmd.pause)
	case cmdNextPlayer:
		r.handleNextPlayer(cmd.c)
	case cmdPlaceBid:
		r.handlePlaceBid(cmd.c, cmd.playerID, cmd.amount)
	case cmdSellPlayer:
		r.handleSellPlayer(cmd.c, cmd.playerID)
	case cmdSkipPlayer:
		r.handleSkipPlayer(cmd.c, cmd.playerID)
	case cmdSendMessage:
		r.handleSendMessage(cmd.c, cmd.body)
	case cmdReject:
		r.sendRejection(cmd.c, cmd.rej)
	}
}

// sendRejection доставляет отказ только инициатору; состояние не меняется
// и остальные соединения ничего не видят.
func (r *Room) sendRejection(c *Client, rej *Rejection) {
	if c.Role == RoleBidder && (rej.Reason == ReasonStalePrice ||
		rej.Reason == ReasonInsufficientBudget ||
		rej.Reason == ReasonNotApproved ||
		rej.Reason == ReasonAuctionPaused ||
		rej.Reason == ReasonNoActiveLot) {
		r.hub.sendTo(c, BidErrorEvent{Code: rej.Reason, Message: rej.Message})
		return
	}
	if rej.Reason == ReasonNotAuthorized {
		r.hub.sendTo(c, AuthErrorEvent{Message: rej.Message})
		return
	}
	r.hub.sendTo(c, CommandErrorEvent{Code: rej.Reason, Message: rej.Message})
}

func (r *Room) requireAdmin(c *Client) bool {
	if c.Role != RoleAdmin {
		r.sendRejection(c, reject(ReasonNotAuthorized, "command requires the auction admin"))
		return false
	}
	return true
}

func (r *Room) handleJoin(c *Client) {
	r.hub.add(c)

	if c.Role == RoleBidder {
		b, created := r.state.ensureBidder(c.UserID, c.DisplayName, c.TeamName)
		if created {
			r.hub.broadcastExcept(c, BidderJoinedEvent{Bidder: copyBidder(b)})
			r.logger.Info("bidder joined",
				slog.Int("bidder_id", b.ID),
				slog.String("team", b.TeamName),
			)
		}
	}

	r.hub.sendTo(c, r.state.snapshot())
}

func (r *Room) handleLeave(c *Client) {
	r.hub.remove(c)
	c.close()

	if r.state.status == StatusCompleted && r.hub.empty() {
		r.shutdown()
		if r.onIdle != nil {
			r.onIdle(r.id)
		}
	}
}

func (r *Room) handleApprove(c *Client, bidderID int, approve bool) {
	if !r.requireAdmin(c) {
		return
	}
	if r.state.status == StatusCompleted {
		r.sendRejection(c, reject(ReasonInvalidState, "auction is completed"))
		return
	}
	b, ok := r.state.bidders[bidderID]
	if !ok {
		r.sendRejection(c, reject(ReasonUnknownBidder, fmt.Sprintf("bidder %d has not joined this auction", bidderID)))
		return
	}

	// Решение админа можно пересматривать: approved и rejected не
	// терминальны до завершения аукциона.
	if approve {
		b.Approval = ApprovalApproved
	} else {
		b.Approval = ApprovalRejected
	}

	r.hub.broadcast(BidderStatusEvent{Bidder: copyBidder(b)})
	r.hub.sendToBidder(bidderID, ApprovalEvent{Approved: approve})
}

func (r *Room) handleStart(c *Client) {
	if !r.requireAdmin(c) {
		return
	}
	if r.state.status != StatusDraft {
		r.sendRejection(c, reject(ReasonInvalidState, fmt.Sprintf("auction cannot start from status %s", r.state.status)))
		return
	}

	r.state.status = StatusActive
	r.logger.Info("auction started", slog.Int("lots", len(r.state.queue)))
	r.hub.broadcast(StartedEvent{})
	r.persistStatus(StatusActive)
	r.advanceLot()
}

func (r *Room) handlePause(c *Client, pause bool) {
	if !r.requireAdmin(c) {
		return
	}
	switch r.state.status {
	case StatusActive, StatusPaused:
	default:
		r.sendRejection(c, reject(ReasonInvalidState, fmt.Sprintf("auction is %s, cannot pause or resume", r.state.status)))
		return
	}

	// Пауза не трогает текущий лот: после возобновления торги продолжаются
	// по той же цене.
	if pause {
		r.state.status = StatusPaused
	} else {
		r.state.status = StatusActive
	}
	r.hub.broadcast(PausedEvent{Paused: pause})
	r.persistStatus(r.state.status)
}

func (r *Room) handleNextPlayer(c *Client) {
	if !r.requireAdmin(c) {
		return
	}
	if r.state.status != StatusActive {
		r.sendRejection(c, reject(ReasonInvalidState, fmt.Sprintf("auction is %s", r.state.status)))
		return
	}
	// Перейти дальше при неразрешённом лоте нельзя: это защита от случайного
	// броска лота, а не молчаливый пропуск.
	if r.state.current != nil && r.state.current.Status == LotActive {
		r.sendRejection(c, reject(ReasonLotInProgress, fmt.Sprintf("player %d is still up for bid", r.state.current.PlayerID)))
		return
	}
	r.advanceLot()
}

func (r *Room) handlePlaceBid(c *Client, playerID, amount int) {
	if c.Role != RoleBidder {
		r.sendRejection(c, reject(ReasonNotAuthorized, "only bidders can place bids"))
		return
	}

	bidder := r.state.bidders[c.UserID]
	if rej := validateBid(r.state, bidder, playerID, amount); rej != nil {
		r.sendRejection(c, rej)
		return
	}

	lot := r.state.current
	lot.CurrentPrice = amount
	lot.LeadingBidder = c.UserID

	r.hub.broadcast(BidPlacedEvent{Bid: BidInfo{
		PlayerID: playerID,
		Amount:   amount,
		BidderID: c.UserID,
	}})
}

func (r *Room) handleSellPlayer(c *Client, playerID int) {
	if !r.requireAdmin(c) {
		return
	}
	lot := r.state.current
	if lot == nil || lot.Status != LotActive || lot.PlayerID != playerID {
		r.sendRejection(c, reject(ReasonInvalidState, "no matching active lot to sell"))
		return
	}
	if lot.LeadingBidder == 0 {
		r.sendRejection(c, reject(ReasonInvalidState, "lot has no leading bidder"))
		return
	}

	bidder, ok := r.state.bidders[lot.LeadingBidder]
	if !ok || bidder.RemainingBudget < lot.CurrentPrice {
		// Недостижимо при корректном арбитре; нарушение инварианта гасит
		// эффекты только этой команды.
		r.logger.Error("sell would violate budget invariant",
			slog.Int("player_id", playerID),
			slog.Int("leading_bidder", lot.LeadingBidder),
		)
		r.sendRejection(c, reject(ReasonInvalidState, "sale would violate bidder budget"))
		return
	}

	price := lot.CurrentPrice
	lot.Status = LotSold
	lot.SoldTo = bidder.ID
	lot.SoldTeam = bidder.TeamName
	lot.SoldPrice = price
	bidder.RemainingBudget -= price
	bidder.WonLots = append(bidder.WonLots, WonLot{PlayerID: lot.PlayerID, Price: price})
	r.state.current = nil

	r.logger.Info("player sold",
		slog.Int("player_id", lot.PlayerID),
		slog.Int("bidder_id", bidder.ID),
		slog.Int("price", price),
	)
	r.hub.broadcast(PlayerSoldEvent{Player: *lot, SoldTo: bidder.ID, SoldPrice: price})
	r.persistLot(*lot)
	r.advanceLot()
}

func (r *Room) handleSkipPlayer(c *Client, playerID int) {
	if !r.requireAdmin(c) {
		return
	}
	lot := r.state.current
	if lot == nil || lot.Status != LotActive || lot.PlayerID != playerID {
		r.sendRejection(c, reject(ReasonInvalidState, "no matching active lot to skip"))
		return
	}

	lot.Status = LotUnsold
	lot.LeadingBidder = 0
	r.state.current = nil

	r.hub.broadcast(PlayerUnsoldEvent{PlayerID: lot.PlayerID})
	r.persistLot(*lot)
	r.advanceLot()
}

func (r *Room) handleSendMessage(c *Client, body string) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxChatLength {
		r.sendRejection(c, reject(ReasonInvalidMessage, fmt.Sprintf("message must be 1..%d characters", maxChatLength)))
		return
	}
	if c.Role == RoleBidder {
		b := r.state.bidders[c.UserID]
		if b == nil || b.Approval != ApprovalApproved {
			r.sendRejection(c, reject(ReasonNotApproved, "bidder is not approved for chat"))
			return
		}
	}

	msg := ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   c.senderKey(),
		SenderRole: c.Role,
		SenderName: c.DisplayName,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	r.state.chat = append(r.state.chat, msg)
	r.hub.broadcast(NewMessageEvent{Message: msg})
}

// advanceLot выставляет на торги следующий pending-лот в исходном порядке
// очереди. Если лотов не осталось, аукцион завершается.
func (r *Room) advanceLot() {
	next := r.state.nextPending()
	if next == nil {
		r.completeAuction()
		return
	}

	next.Status = LotActive
	next.CurrentPrice = next.BasePrice
	next.LeadingBidder = 0
	r.state.current = next

	r.hub.broadcast(PlayerUpEvent{Player: *next})
}

func (r *Room) completeAuction() {
	r.state.status = StatusCompleted
	r.state.current = nil
	r.logger.Info("auction completed", slog.Int("auction_id", r.id))
	r.hub.broadcast(CompletedEvent{})
	r.persistStatus(StatusCompleted)
}

// persistLot и persistStatus - побочные эффекты записи. Они не имеют права
// задерживать обработку следующей команды, поэтому выполняются вне цикла.
func (r *Room) persistLot(lot Lot) {
	if r.results == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := r.results.SaveLotResult(ctx, r.id, lot); err != nil {
			r.logger.Error("failed to persist lot result",
				slog.Int("player_id", lot.PlayerID),
				slog.Any("error", err),
			)
		}
	}()
}

func (r *Room) persistStatus(status Status) {
	if r.results == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := r.results.SaveAuctionStatus(ctx, r.id, status); err != nil {
			r.logger.Error("failed to persist auction status",
				slog.String("status", string(status)),
				slog.Any("error", err),
			)
		}
	}()
}
