package auction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSink собирает результаты, которые комната пишет fire-and-forget.
type recordingSink struct {
	mu       sync.Mutex
	lots     []Lot
	statuses []Status
	lotCh    chan Lot
}

func newRecordingSink() *recordingSink {
	return &recordingSink{lotCh: make(chan Lot, 64)}
}

func (s *recordingSink) SaveLotResult(_ context.Context, _ int, lot Lot) error {
	s.mu.Lock()
	s.lots = append(s.lots, lot)
	s.mu.Unlock()
	s.lotCh <- lot
	return nil
}

func (s *recordingSink) SaveAuctionStatus(_ context.Context, _ int, status Status) error {
	s.mu.Lock()
	s.statuses = append(s.statuses, status)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) waitLot(t *testing.T) Lot {
	t.Helper()
	select {
	case lot := <-s.lotCh:
		return lot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for persisted lot")
	}
	return Lot{}
}

func twoLotSetup() *Setup {
	return &Setup{
		ID:            7,
		Name:          "spring roster auction",
		DefaultBudget: 1000,
		Lots: []SetupLot{
			{PlayerID: 10, PlayerName: "Lionel", Position: "FW", BasePrice: 50},
			{PlayerID: 11, PlayerName: "Cristiano", Position: "FW", BasePrice: 80},
		},
	}
}

func startRoom(t *testing.T, setup *Setup, sink ResultSink) *Room {
	t.Helper()
	room := newRoom(setup, sink, testLogger(), nil)
	go room.run()
	t.Cleanup(room.shutdown)
	return room
}

func join(t *testing.T, room *Room, role Role, userID int, name, team string) *Client {
	t.Helper()
	c := newClient(Identity{Role: role, UserID: userID, DisplayName: name, TeamName: team})
	require.NoError(t, room.Attach(c))
	return c
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func nextEvent(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case data, ok := <-c.Receive():
		require.True(t, ok, "client send channel closed unexpectedly")
		var env envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return envelope{}
}

// expectEvent пропускает события до появления нужного типа.
func expectEvent(t *testing.T, c *Client, eventType string) envelope {
	t.Helper()
	for i := 0; i < 32; i++ {
		env := nextEvent(t, c)
		if env.Type == eventType {
			return env
		}
	}
	t.Fatalf("event %q never arrived", eventType)
	return envelope{}
}

func decodePayload(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Payload, dst))
}

func frame(t *testing.T, cmdType string, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"type": cmdType, "payload": payload})
	require.NoError(t, err)
	return raw
}

func send(t *testing.T, room *Room, c *Client, cmdType string, payload any) {
	t.Helper()
	require.NoError(t, room.HandleMessage(c, frame(t, cmdType, payload)))
}

func TestJoinDeliversSnapshotAndAnnouncesNewBidder(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	env := nextEvent(t, admin)
	require.Equal(t, EventAuctionState, env.Type)

	var snap StateEvent
	decodePayload(t, env, &snap)
	require.Equal(t, 7, snap.Auction.ID)
	require.Equal(t, StatusDraft, snap.Auction.Status)
	require.Len(t, snap.Auction.Players, 2)
	require.Equal(t, LotPending, snap.Auction.Players[0].Status)
	require.Empty(t, snap.Bidders)

	bidder := join(t, room, RoleBidder, 2, "alice", "FC Alice")

	// Инициатор получает снапшот со своей записью, остальные - bidder-joined.
	env = nextEvent(t, bidder)
	require.Equal(t, EventAuctionState, env.Type)
	decodePayload(t, env, &snap)
	require.Len(t, snap.Bidders, 1)
	require.Equal(t, 2, snap.Bidders[0].ID)
	require.Equal(t, ApprovalPending, snap.Bidders[0].Approval)
	require.Equal(t, 1000, snap.Bidders[0].RemainingBudget)

	env = nextEvent(t, admin)
	require.Equal(t, EventBidderJoined, env.Type)
	var joined BidderJoinedEvent
	decodePayload(t, env, &joined)
	require.Equal(t, "FC Alice", joined.Bidder.TeamName)
}

func TestSnapshotIdempotentAcrossRejoin(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	first := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	env1 := nextEvent(t, first)
	require.Equal(t, EventAuctionState, env1.Type)

	// Та же личность со второй вкладки: состояние не меняется, снапшоты
	// структурно совпадают.
	second := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	env2 := nextEvent(t, second)
	require.Equal(t, EventAuctionState, env2.Type)

	require.JSONEq(t, string(env1.Payload), string(env2.Payload))
}

func TestApproveBidderBroadcastsAndTargets(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin) // снапшот

	tabOne := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, tabOne)
	tabTwo := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, tabTwo)
	nextEvent(t, admin) // bidder-joined

	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": true})

	env := expectEvent(t, admin, EventBidderStatus)
	var status BidderStatusEvent
	decodePayload(t, env, &status)
	require.Equal(t, ApprovalApproved, status.Bidder.Approval)

	// Обе вкладки участника получают и общий bidder-status-updated, и
	// адресный approval-status.
	for _, tab := range []*Client{tabOne, tabTwo} {
		expectEvent(t, tab, EventBidderStatus)
		env = expectEvent(t, tab, EventApprovalStatus)
		var approval ApprovalEvent
		decodePayload(t, env, &approval)
		require.True(t, approval.Approved)
	}
}

func TestApproveBidderRequiresAdmin(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	bidder := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, bidder)

	send(t, room, bidder, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": true})

	env := nextEvent(t, bidder)
	require.Equal(t, EventAuthError, env.Type)
}

func TestApprovalCanBeRevoked(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	bidder := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, bidder)
	nextEvent(t, admin)

	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": true})
	expectEvent(t, bidder, EventApprovalStatus)

	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": false})
	env := expectEvent(t, bidder, EventBidderStatus)
	var status BidderStatusEvent
	decodePayload(t, env, &status)
	require.Equal(t, ApprovalRejected, status.Bidder.Approval)
}

// Сценарий: старт с двумя лотами, две ставки, продажа, переход к
// следующему лоту.
func TestAuctionLifecycleSellAndAdvance(t *testing.T) {
	sink := newRecordingSink()
	room := startRoom(t, twoLotSetup(), sink)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	bidder := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, bidder)
	nextEvent(t, admin)

	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": true})
	expectEvent(t, bidder, EventApprovalStatus)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, admin, EventAuctionStarted)

	env := expectEvent(t, admin, EventPlayerUp)
	var up PlayerUpEvent
	decodePayload(t, env, &up)
	require.Equal(t, 10, up.Player.PlayerID)
	require.Equal(t, 50, up.Player.CurrentPrice)

	send(t, room, bidder, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 100})
	env = expectEvent(t, admin, EventBidPlaced)
	var placed BidPlacedEvent
	decodePayload(t, env, &placed)
	require.Equal(t, 100, placed.Bid.Amount)
	require.Equal(t, 2, placed.Bid.BidderID)

	// Перебить собственную ставку можно.
	send(t, room, bidder, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 150})
	env = expectEvent(t, admin, EventBidPlaced)
	decodePayload(t, env, &placed)
	require.Equal(t, 150, placed.Bid.Amount)

	send(t, room, admin, CommandSellPlayer, map[string]any{"playerId": 10})
	env = expectEvent(t, admin, EventPlayerSold)
	var sold PlayerSoldEvent
	decodePayload(t, env, &sold)
	require.Equal(t, 2, sold.SoldTo)
	require.Equal(t, 150, sold.SoldPrice)
	require.Equal(t, LotSold, sold.Player.Status)

	// Продажа автоматически выставляет следующий лот.
	env = expectEvent(t, admin, EventPlayerUp)
	decodePayload(t, env, &up)
	require.Equal(t, 11, up.Player.PlayerID)
	require.Equal(t, 80, up.Player.CurrentPrice)

	// Результат ушёл в хранилище с зафиксированной ценой.
	persisted := sink.waitLot(t)
	require.Equal(t, 10, persisted.PlayerID)
	require.Equal(t, LotSold, persisted.Status)
	require.Equal(t, 150, persisted.SoldPrice)
	require.Equal(t, 2, persisted.SoldTo)

	// Бюджет победителя уменьшился ровно на цену продажи.
	late := join(t, room, RoleViewer, 0, "viewer", "")
	env = nextEvent(t, late)
	var snap StateEvent
	decodePayload(t, env, &snap)
	require.Equal(t, 850, snap.Bidders[0].RemainingBudget)
	require.Equal(t, []WonLot{{PlayerID: 10, Price: 150}}, snap.Bidders[0].WonLots)
}

// Сценарий: устаревшая ставка отклоняется только инициатору, без
// трансляции и без изменения состояния.
func TestStaleBidRejectedOnlyToIssuer(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	b1 := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, b1)
	nextEvent(t, admin)
	b2 := join(t, room, RoleBidder, 3, "bob", "FC Bob")
	nextEvent(t, b2)
	nextEvent(t, admin)
	expectEvent(t, b1, EventBidderJoined)

	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": true})
	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 3, "approved": true})
	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, admin, EventPlayerUp)

	send(t, room, b1, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 100})
	expectEvent(t, admin, EventBidPlaced)
	expectEvent(t, b2, EventBidPlaced)

	send(t, room, b2, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 50})

	env := nextEvent(t, b2)
	require.Equal(t, EventBidError, env.Type)
	var bidErr BidErrorEvent
	decodePayload(t, env, &bidErr)
	require.Equal(t, ReasonStalePrice, bidErr.Code)

	// Следующее широковещательное событие подтверждает, что отказ не
	// транслировался: до него в потоках остальных нет bid-error.
	send(t, room, admin, CommandSendMessage, map[string]any{"message": "going once"})
	for _, c := range []*Client{admin, b1} {
		for {
			env = nextEvent(t, c)
			require.NotEqual(t, EventBidError, env.Type)
			if env.Type == EventNewMessage {
				break
			}
		}
	}
}

// Сценарий: не одобренный участник получает not-approved; после одобрения
// та же ставка проходит.
func TestUnapprovedBidderThenApproved(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	bidder := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, bidder)
	nextEvent(t, admin)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, bidder, EventPlayerUp)

	send(t, room, bidder, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 100})
	env := nextEvent(t, bidder)
	require.Equal(t, EventBidError, env.Type)
	var bidErr BidErrorEvent
	decodePayload(t, env, &bidErr)
	require.Equal(t, ReasonNotApproved, bidErr.Code)

	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": true})
	expectEvent(t, bidder, EventApprovalStatus)

	send(t, room, bidder, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 100})
	env = expectEvent(t, bidder, EventBidPlaced)
	var placed BidPlacedEvent
	decodePayload(t, env, &placed)
	require.Equal(t, 100, placed.Bid.Amount)
}

// Сценарий: пауза отклоняет ставки, возобновление продолжает тот же лот
// по той же цене.
func TestPauseBlocksBiddingAndResumeKeepsPrice(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	bidder := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, bidder)
	nextEvent(t, admin)

	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": true})
	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, bidder, EventPlayerUp)

	send(t, room, bidder, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 100})
	expectEvent(t, bidder, EventBidPlaced)

	send(t, room, admin, CommandPauseAuction, map[string]any{"pause": true})
	env := expectEvent(t, bidder, EventAuctionPaused)
	var paused PausedEvent
	decodePayload(t, env, &paused)
	require.True(t, paused.Paused)

	send(t, room, bidder, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 200})
	env = nextEvent(t, bidder)
	require.Equal(t, EventBidError, env.Type)
	var bidErr BidErrorEvent
	decodePayload(t, env, &bidErr)
	require.Equal(t, ReasonAuctionPaused, bidErr.Code)

	send(t, room, admin, CommandPauseAuction, map[string]any{"pause": false})
	env = expectEvent(t, bidder, EventAuctionPaused)
	decodePayload(t, env, &paused)
	require.False(t, paused.Paused)

	// Тот же лот, та же цена: 100 не проходит, 101 проходит.
	send(t, room, bidder, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 100})
	env = nextEvent(t, bidder)
	require.Equal(t, EventBidError, env.Type)
	decodePayload(t, env, &bidErr)
	require.Equal(t, ReasonStalePrice, bidErr.Code)

	send(t, room, bidder, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 101})
	env = expectEvent(t, bidder, EventBidPlaced)
	var placed BidPlacedEvent
	decodePayload(t, env, &placed)
	require.Equal(t, 101, placed.Bid.Amount)
}

func TestSkipPlayerMarksUnsoldAndAdvances(t *testing.T) {
	sink := newRecordingSink()
	room := startRoom(t, twoLotSetup(), sink)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, admin, EventPlayerUp)

	send(t, room, admin, CommandSkipPlayer, map[string]any{"playerId": 10})
	env := expectEvent(t, admin, EventPlayerUnsold)
	var unsold PlayerUnsoldEvent
	decodePayload(t, env, &unsold)
	require.Equal(t, 10, unsold.PlayerID)

	persisted := sink.waitLot(t)
	require.Equal(t, LotUnsold, persisted.Status)
	require.Zero(t, persisted.SoldPrice)

	env = expectEvent(t, admin, EventPlayerUp)
	var up PlayerUpEvent
	decodePayload(t, env, &up)
	require.Equal(t, 11, up.Player.PlayerID)
}

func TestSellWithoutLeadingBidderRejected(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, admin, EventPlayerUp)

	send(t, room, admin, CommandSellPlayer, map[string]any{"playerId": 10})
	env := nextEvent(t, admin)
	require.Equal(t, EventCommandError, env.Type)
	var cmdErr CommandErrorEvent
	decodePayload(t, env, &cmdErr)
	require.Equal(t, ReasonInvalidState, cmdErr.Code)
}

func TestSellMismatchedLotRejected(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, admin, EventPlayerUp)

	// Лот 11 ещё не на торгах.
	send(t, room, admin, CommandSellPlayer, map[string]any{"playerId": 11})
	env := nextEvent(t, admin)
	require.Equal(t, EventCommandError, env.Type)
}

func TestNextPlayerGuardedWhileLotActive(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, admin, EventPlayerUp)

	send(t, room, admin, CommandNextPlayer, nil)
	env := nextEvent(t, admin)
	require.Equal(t, EventCommandError, env.Type)
	var cmdErr CommandErrorEvent
	decodePayload(t, env, &cmdErr)
	require.Equal(t, ReasonLotInProgress, cmdErr.Code)
}

func TestStartOnlyFromDraft(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, admin, EventAuctionStarted)
	expectEvent(t, admin, EventPlayerUp)

	send(t, room, admin, CommandStartAuction, nil)
	env := nextEvent(t, admin)
	require.Equal(t, EventCommandError, env.Type)
	var cmdErr CommandErrorEvent
	decodePayload(t, env, &cmdErr)
	require.Equal(t, ReasonInvalidState, cmdErr.Code)
}

func TestAuctionCompletesWhenQueueExhausted(t *testing.T) {
	setup := &Setup{
		ID:            8,
		Name:          "single lot",
		DefaultBudget: 500,
		Lots:          []SetupLot{{PlayerID: 10, PlayerName: "Lionel", BasePrice: 50}},
	}
	room := startRoom(t, setup, nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, admin, EventPlayerUp)

	send(t, room, admin, CommandSkipPlayer, map[string]any{"playerId": 10})
	expectEvent(t, admin, EventPlayerUnsold)
	env := expectEvent(t, admin, EventCompleted)
	require.Equal(t, EventCompleted, env.Type)
}

func TestChatValidation(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	viewer := join(t, room, RoleViewer, 0, "spectator", "")
	nextEvent(t, viewer)
	bidder := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, bidder)
	nextEvent(t, admin)
	nextEvent(t, viewer)

	// Зритель может писать в чат без одобрения.
	send(t, room, viewer, CommandSendMessage, map[string]any{"message": "  hello  "})
	env := expectEvent(t, admin, EventNewMessage)
	var msg NewMessageEvent
	decodePayload(t, env, &msg)
	require.Equal(t, "hello", msg.Message.Body)
	require.Equal(t, RoleViewer, msg.Message.SenderRole)
	expectEvent(t, viewer, EventNewMessage)

	// Не одобренный участник - нет.
	send(t, room, bidder, CommandSendMessage, map[string]any{"message": "let me in"})
	env = expectEvent(t, bidder, EventBidError)
	var bidErr BidErrorEvent
	decodePayload(t, env, &bidErr)
	require.Equal(t, ReasonNotApproved, bidErr.Code)

	// Пустое и слишком длинное сообщения отклоняются.
	send(t, room, viewer, CommandSendMessage, map[string]any{"message": "   "})
	env = nextEvent(t, viewer)
	require.Equal(t, EventCommandError, env.Type)

	long := make([]byte, maxChatLength+1)
	for i := range long {
		long[i] = 'a'
	}
	send(t, room, viewer, CommandSendMessage, map[string]any{"message": string(long)})
	env = nextEvent(t, viewer)
	require.Equal(t, EventCommandError, env.Type)
}

func TestMalformedFrameRejectedInOrder(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	viewer := join(t, room, RoleViewer, 0, "spectator", "")
	nextEvent(t, viewer)

	require.NoError(t, room.HandleMessage(viewer, []byte("{not json")))
	env := nextEvent(t, viewer)
	require.Equal(t, EventCommandError, env.Type)
	var cmdErr CommandErrorEvent
	decodePayload(t, env, &cmdErr)
	require.Equal(t, ReasonBadCommand, cmdErr.Code)

	require.NoError(t, room.HandleMessage(viewer, frame(t, "time-travel", nil)))
	env = nextEvent(t, viewer)
	require.Equal(t, EventCommandError, env.Type)
}

func TestViewerCannotBid(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	viewer := join(t, room, RoleViewer, 0, "spectator", "")
	nextEvent(t, viewer)

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, viewer, EventPlayerUp)

	send(t, room, viewer, CommandPlaceBid, map[string]any{"playerId": 10, "amount": 100})
	env := nextEvent(t, viewer)
	require.Equal(t, EventAuthError, env.Type)
}

func TestDetachKeepsBidderState(t *testing.T) {
	room := startRoom(t, twoLotSetup(), nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	bidder := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	nextEvent(t, bidder)
	nextEvent(t, admin)

	send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": 2, "approved": true})
	expectEvent(t, bidder, EventApprovalStatus)

	require.NoError(t, room.Detach(bidder))

	// Переподключение той же личности: одобрение и бюджет сохранились, и
	// bidder-joined повторно не рассылается.
	again := join(t, room, RoleBidder, 2, "alice", "FC Alice")
	env := nextEvent(t, again)
	require.Equal(t, EventAuctionState, env.Type)
	var snap StateEvent
	decodePayload(t, env, &snap)
	require.Len(t, snap.Bidders, 1)
	require.Equal(t, ApprovalApproved, snap.Bidders[0].Approval)
}

// Рандомизированный прогон конкурентных ставок по одному лоту: принятая
// последовательность цен строго возрастает, бюджет победителя сходится.
func TestConcurrentBidsSingleLot(t *testing.T) {
	setup := &Setup{
		ID:            9,
		Name:          "contention",
		DefaultBudget: 100000,
		Lots:          []SetupLot{{PlayerID: 10, PlayerName: "Lionel", BasePrice: 10}},
	}
	room := startRoom(t, setup, nil)

	admin := join(t, room, RoleAdmin, 1, "boss", "")
	nextEvent(t, admin)
	viewer := join(t, room, RoleViewer, 0, "spectator", "")
	nextEvent(t, viewer)

	const bidders = 5
	clients := make([]*Client, bidders)
	for i := 0; i < bidders; i++ {
		id := 100 + i
		clients[i] = join(t, room, RoleBidder, id, fmt.Sprintf("bidder-%d", id), fmt.Sprintf("team-%d", id))
		nextEvent(t, clients[i])
		send(t, room, admin, CommandApproveBidder, map[string]any{"bidderId": id, "approved": true})
		expectEvent(t, clients[i], EventApprovalStatus)
	}

	send(t, room, admin, CommandStartAuction, nil)
	expectEvent(t, viewer, EventPlayerUp)

	var wg sync.WaitGroup
	for i, c := range clients {
		wg.Add(1)
		go func(i int, c *Client) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(i)))
			for n := 0; n < 20; n++ {
				amount := 100 + rng.Intn(500)
				raw := fmt.Sprintf(`{"type":"place-bid","payload":{"playerId":10,"amount":%d}}`, amount)
				_ = room.HandleMessage(c, []byte(raw))
			}
		}(i, c)
	}
	wg.Wait()

	send(t, room, admin, CommandSellPlayer, map[string]any{"playerId": 10})

	// Зритель видит все принятые ставки в порядке коммитов.
	prev := 10
	var sold PlayerSoldEvent
	for {
		env := nextEvent(t, viewer)
		switch env.Type {
		case EventBidPlaced:
			var placed BidPlacedEvent
			decodePayload(t, env, &placed)
			require.Greater(t, placed.Bid.Amount, prev, "accepted bids must strictly increase")
			prev = placed.Bid.Amount
		case EventPlayerSold:
			decodePayload(t, env, &sold)
		case EventCompleted:
			require.Equal(t, prev, sold.SoldPrice, "sold price equals last accepted bid")

			// Бюджет победителя: initial - remaining == сумма цен
			// выигранных лотов.
			late := join(t, room, RoleViewer, 0, "late", "")
			snapEnv := nextEvent(t, late)
			var snap StateEvent
			decodePayload(t, snapEnv, &snap)
			for _, b := range snap.Bidders {
				spent := 0
				for _, w := range b.WonLots {
					spent += w.Price
				}
				require.Equal(t, b.InitialBudget-b.RemainingBudget, spent)
				if b.ID == sold.SoldTo {
					require.Equal(t, sold.SoldPrice, spent)
				}
			}
			return
		}
	}
}
