package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Toleubekov/auction-system/auction"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// Первый кадр (join-auction) должен прийти в течение этого окна.
	joinWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type AuctionWSHandler struct {
	gateway *auction.Gateway
	logger  *slog.Logger
}

func NewAuctionWSHandler(gateway *auction.Gateway, logger *slog.Logger) *AuctionWSHandler {
	return &AuctionWSHandler{gateway: gateway, logger: logger}
}

// joinFrame - первый кадр соединения: заявка на вход в комнату.
type joinFrame struct {
	Type    string `json:"type"`
	Payload struct {
		AuctionID int              `json:"auctionId"`
		Role      auction.Role     `json:"role"`
		AuthData  auction.AuthData `json:"authData"`
	} `json:"payload"`
}

// ServeWs обрабатывает WebSocket подключения к комнате аукциона.
// Клиент подключается к /ws/auctions/{auctionID} и первым кадром
// отправляет join-auction; до успешного входа никакие другие команды
// не принимаются.
func (h *AuctionWSHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	auctionID, err := getIDFromURL(r, "auctionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			slog.Int("auction_id", auctionID),
			slog.Any("error", err))
		return
	}

	client, room, err := h.join(r, conn, auctionID)
	if err != nil {
		h.writeAuthError(conn, err)
		conn.Close()
		return
	}

	h.logger.Info("auction connection established",
		slog.Int("auction_id", auctionID),
		slog.String("role", string(client.Role)),
		slog.String("connection_id", client.ID))

	go h.writePump(conn, client)
	go h.readPump(conn, client, room)
}

// join читает первый кадр и пропускает соединение через Gateway.
func (h *AuctionWSHandler) join(r *http.Request, conn *websocket.Conn, auctionID int) (*auction.Client, *auction.Room, error) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(joinWait)); err != nil {
		return nil, nil, err
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read join frame: %w", err)
	}

	var frame joinFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, nil, fmt.Errorf("malformed join frame: %w", err)
	}
	if frame.Type != "join-auction" {
		return nil, nil, fmt.Errorf("expected join-auction, got %q", frame.Type)
	}
	if frame.Payload.AuctionID != 0 && frame.Payload.AuctionID != auctionID {
		return nil, nil, errors.New("auction id in join frame does not match URL")
	}

	return h.gateway.Join(r.Context(), auctionID, frame.Payload.Role, frame.Payload.AuthData)
}

func (h *AuctionWSHandler) writeAuthError(conn *websocket.Conn, cause error) {
	msg := "authentication failed"
	if errors.Is(cause, auction.ErrAuthRejected) {
		msg = cause.Error()
	}
	data, err := auction.EncodeEvent(auction.AuthErrorEvent{Message: msg})
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, data)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "join rejected"))
}

// readPump читает команды клиента и передаёт их в комнату. Завершение
// читающей горутины отцепляет соединение от комнаты.
func (h *AuctionWSHandler) readPump(conn *websocket.Conn, client *auction.Client, room *auction.Room) {
	defer func() {
		_ = room.Detach(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("auction connection closed unexpectedly",
					slog.Int("auction_id", room.ID()),
					slog.Any("error", err))
			}
			return
		}

		if err := room.HandleMessage(client, raw); err != nil {
			if errors.Is(err, auction.ErrRoomClosed) {
				return
			}
			// Очередь команд переполнена; соединение живо, клиент может повторить.
			h.logger.Warn("command dropped",
				slog.Int("auction_id", room.ID()),
				slog.Any("error", err))
		}
	}
}

// writePump переливает события комнаты в сокет и поддерживает ping/pong.
// Закрытие канала клиента (например, как медленного потребителя) закрывает
// сокет.
func (h *AuctionWSHandler) writePump(conn *websocket.Conn, client *auction.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.Receive():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
