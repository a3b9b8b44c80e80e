package auction

import (
	"encoding/json"
	"fmt"
)

// Входящие команды комнаты. Закрытое множество типов с фиксированными
// полезными нагрузками; join проходит через Gateway, остальные приходят
// кадрами {"type": ..., "payload": ...} по уже открытому соединению.
type command interface {
	issuer() *Client
}

type cmdJoin struct{ c *Client }

type cmdLeave struct{ c *Client }

type cmdApproveBidder struct {
	c        *Client
	bidderID int
	approve  bool
}

type cmdStart struct{ c *Client }

type cmdPause struct {
	c     *Client
	pause bool
}

type cmdNextPlayer struct{ c *Client }

type cmdPlaceBid struct {
	c        *Client
	playerID int
	amount   int
}

type cmdSellPlayer struct {
	c        *Client
	playerID int
}

type cmdSkipPlayer struct {
	c        *Client
	playerID int
}

type cmdSendMessage struct {
	c    *Client
	body string
}

// cmdReject доставляет инициатору отказ, сформированный вне цикла комнаты
// (например, нечитаемый кадр), не нарушая порядок событий.
type cmdReject struct {
	c   *Client
	rej *Rejection
}

func (c cmdJoin) issuer() *Client          { return c.c }
func (c cmdLeave) issuer() *Client         { return c.c }
func (c cmdApproveBidder) issuer() *Client { return c.c }
func (c cmdStart) issuer() *Client         { return c.c }
func (c cmdPause) issuer() *Client         { return c.c }
func (c cmdNextPlayer) issuer() *Client    { return c.c }
func (c cmdPlaceBid) issuer() *Client      { return c.c }
func (c cmdSellPlayer) issuer() *Client    { return c.c }
func (c cmdSkipPlayer) issuer() *Client    { return c.c }
func (c cmdSendMessage) issuer() *Client   { return c.c }
func (c cmdReject) issuer() *Client        { return c.c }

const (
	CommandApproveBidder = "approve-bidder"
	CommandStartAuction  = "start-auction"
	CommandPauseAuction  = "pause-auction"
	CommandNextPlayer    = "next-player"
	CommandPlaceBid      = "place-bid"
	CommandSellPlayer    = "sell-player"
	CommandSkipPlayer    = "skip-player"
	CommandSendMessage   = "send-message"
)

type commandEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func decodeCommand(c *Client, raw []byte) (command, *Rejection) {
	var env commandEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, reject(ReasonBadCommand, "malformed command frame")
	}

	unmarshal := func(dst any) *Rejection {
		if len(env.Payload) == 0 {
			return reject(ReasonBadCommand, fmt.Sprintf("%s: missing payload", env.Type))
		}
		if err := json.Unmarshal(env.Payload, dst); err != nil {
			return reject(ReasonBadCommand, fmt.Sprintf("%s: invalid payload", env.Type))
		}
		return nil
	}

	switch env.Type {
	case CommandApproveBidder:
		var p struct {
			BidderID int  `json:"bidderId"`
			Approved bool `json:"approved"`
		}
		if rej := unmarshal(&p); rej != nil {
			return nil, rej
		}
		return cmdApproveBidder{c: c, bidderID: p.BidderID, approve: p.Approved}, nil

	case CommandStartAuction:
		return cmdStart{c: c}, nil

	case CommandPauseAuction:
		var p struct {
			Pause bool `json:"pause"`
		}
		if rej := unmarshal(&p); rej != nil {
			return nil, rej
		}
		return cmdPause{c: c, pause: p.Pause}, nil

	case CommandNextPlayer:
		return cmdNextPlayer{c: c}, nil

	case CommandPlaceBid:
		var p struct {
			PlayerID int `json:"playerId"`
			Amount   int `json:"amount"`
		}
		if rej := unmarshal(&p); rej != nil {
			return nil, rej
		}
		return cmdPlaceBid{c: c, playerID: p.PlayerID, amount: p.Amount}, nil

	case CommandSellPlayer:
		var p struct {
			PlayerID int `json:"playerId"`
		}
		if rej := unmarshal(&p); rej != nil {
			return nil, rej
		}
		return cmdSellPlayer{c: c, playerID: p.PlayerID}, nil

	case CommandSkipPlayer:
		var p struct {
			PlayerID int `json:"playerId"`
		}
		if rej := unmarshal(&p); rej != nil {
			return nil, rej
		}
		return cmdSkipPlayer{c: c, playerID: p.PlayerID}, nil

	case CommandSendMessage:
		var p struct {
			Message string `json:"message"`
		}
		if rej := unmarshal(&p); rej != nil {
			return nil, rej
		}
		return cmdSendMessage{c: c, body: p.Message}, nil

	default:
		return nil, reject(ReasonBadCommand, fmt.Sprintf("unknown command type %q", env.Type))
	}
}
