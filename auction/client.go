package auction

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// sendBufferSize ограничивает исходящую очередь соединения. Потребитель,
// не успевающий её разбирать, отключается, а не тормозит комнату.
const sendBufferSize = 256

// Client - одно присоединённое соединение. У одного участника может быть
// несколько соединений (несколько вкладок); все они получают одинаковый
// поток событий, и закрытие одного не влияет на состояние участника.
type Client struct {
	ID          string
	Role        Role
	UserID      int // 0 для зрителей
	DisplayName string
	TeamName    string

	send      chan []byte
	closeOnce sync.Once
}

func newClient(id Identity) *Client {
	return &Client{
		ID:          uuid.NewString(),
		Role:        id.Role,
		UserID:      id.UserID,
		DisplayName: id.DisplayName,
		TeamName:    id.TeamName,
		send:        make(chan []byte, sendBufferSize),
	}
}

// Receive отдаёт исходящий поток соединения. Канал закрывается, когда
// комната отсоединяет клиента; транспорт после этого должен закрыть сокет.
func (c *Client) Receive() <-chan []byte {
	return c.send
}

// senderKey - идентификатор отправителя в чате: id пользователя для
// аутентифицированных ролей, id соединения для зрителей.
func (c *Client) senderKey() string {
	if c.UserID != 0 {
		return strconv.Itoa(c.UserID)
	}
	return c.ID
}

// enqueue кладёт кадр в исходящую очередь. false - очередь переполнена.
// Вызывается только из цикла комнаты, как и close: это гарантирует, что
// запись в закрытый канал невозможна.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}
