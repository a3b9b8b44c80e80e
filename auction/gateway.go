package auction

import (
	"context"
	"errors"
	"fmt"
)

// AuthData - учётные данные, заявленные соединением при входе. Токен
// обязателен для админа и участника; зрителю достаточно отображаемого имени.
type AuthData struct {
	Token       string `json:"token,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	TeamName    string `json:"teamName,omitempty"`
}

// Identity - проверенная личность соединения.
type Identity struct {
	Role        Role
	UserID      int
	DisplayName string
	TeamName    string
}

// CredentialVerifier проверяет заранее выданные учётные данные. Выпуском
// токенов движок не занимается.
type CredentialVerifier interface {
	Verify(role Role, auth AuthData) (Identity, error)
}

// ErrAuthRejected фатальна для попытки входа: соединению отправляется
// auth-error, и клиент должен аутентифицироваться заново.
var ErrAuthRejected = errors.New("auction: credentials rejected")

// Gateway принимает входящие подключения: проверяет заявленную роль и
// привязывает соединение ровно к одной комнате.
type Gateway struct {
	verifier CredentialVerifier
	rooms    *Manager
}

func NewGateway(verifier CredentialVerifier, rooms *Manager) *Gateway {
	return &Gateway{verifier: verifier, rooms: rooms}
}

// Join аутентифицирует соединение и присоединяет его к комнате аукциона.
// Возвращённый клиент уже получает события; транспорт обязан читать
// Client.Receive и по закрытию канала закрыть сокет.
func (g *Gateway) Join(ctx context.Context, auctionID int, role Role, auth AuthData) (*Client, *Room, error) {
	switch role {
	case RoleAdmin, RoleBidder, RoleViewer:
	default:
		return nil, nil, fmt.Errorf("%w: unknown role %q", ErrAuthRejected, role)
	}

	identity, err := g.verifier.Verify(role, auth)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAuthRejected, err)
	}

	room, err := g.rooms.Room(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}

	client := newClient(identity)
	if err := room.Attach(client); err != nil {
		return nil, nil, err
	}
	return client, room, nil
}
