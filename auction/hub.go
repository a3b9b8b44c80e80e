package auction

import "log/slog"

// hub - реестр соединений одной комнаты и веер рассылки по ним. Доступ к
// нему имеет только цикл комнаты, поэтому блокировки не нужны: это прямое
// следствие актёрной модели, а не оптимизация.
//
// Доставка best-effort для каждого соединения: кадр кладётся в ограниченную
// очередь клиента, и если очередь полна, клиент отключается. Медленный
// потребитель никогда не задерживает ни остальных, ни обработку следующей
// команды комнаты.
type hub struct {
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *hub) add(c *Client) {
	h.clients[c] = struct{}{}
}

func (h *hub) remove(c *Client) {
	delete(h.clients, c)
}

func (h *hub) empty() bool {
	return len(h.clients) == 0
}

// broadcast доставляет событие всем соединениям комнаты. Порядок кадров в
// очереди каждого соединения совпадает с порядком коммитов комнаты, потому
// что enqueue происходит синхронно внутри её цикла.
func (h *hub) broadcast(e Event) {
	h.send(e, func(*Client) bool { return true })
}

// broadcastExcept - то же, но минуя одно соединение (инициатора).
func (h *hub) broadcastExcept(skip *Client, e Event) {
	h.send(e, func(c *Client) bool { return c != skip })
}

// sendTo доставляет адресное событие одному соединению.
func (h *hub) sendTo(target *Client, e Event) {
	h.send(e, func(c *Client) bool { return c == target })
}

// sendToBidder доставляет адресное событие всем соединениям участника -
// все его вкладки видят одно и то же.
func (h *hub) sendToBidder(userID int, e Event) {
	h.send(e, func(c *Client) bool { return c.Role == RoleBidder && c.UserID == userID })
}

func (h *hub) send(e Event, match func(*Client) bool) {
	data, err := EncodeEvent(e)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("event", e.EventType()), slog.Any("error", err))
		return
	}

	var slow []*Client
	for c := range h.clients {
		if !match(c) {
			continue
		}
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.logger.Warn("disconnecting slow consumer",
			slog.String("connection_id", c.ID),
			slog.String("role", string(c.Role)),
		)
		h.remove(c)
		c.close()
	}
}

func (h *hub) closeAll() {
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
