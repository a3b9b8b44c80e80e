package auction

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Setup - конфигурация комнаты, загружаемая из хранилища до того, как
// комната начнёт принимать команды.
type Setup struct {
	ID            int
	Name          string
	Status        Status
	DefaultBudget int
	Lots          []SetupLot
}

// SetupLot описывает одну строку очереди, включая уже разрешённые лоты -
// по ним комната восстанавливает состояние после рестарта процесса.
type SetupLot struct {
	PlayerID   int
	PlayerName string
	Position   string
	BasePrice  int
	Status     LotStatus
	SoldTo     int
	SoldTeam   string
	SoldPrice  int
}

// PoolLoader загружает аукцион вместе с пулом игроков.
type PoolLoader interface {
	LoadAuctionSetup(ctx context.Context, auctionID int) (*Setup, error)
}

// ResultSink принимает результаты торгов. Вызывается комнатой как
// fire-and-forget: ошибки записи логируются, но не влияют на комнату.
type ResultSink interface {
	SaveLotResult(ctx context.Context, auctionID int, lot Lot) error
	SaveAuctionStatus(ctx context.Context, auctionID int, status Status) error
}

// Manager держит по одной комнате на аукцион. Комнаты создаются лениво при
// первом подключении и убираются, когда завершённый аукцион остаётся без
// зрителей.
type Manager struct {
	mu    sync.Mutex
	rooms map[int]*Room

	loader  PoolLoader
	results ResultSink
	logger  *slog.Logger
}

func NewManager(loader PoolLoader, results ResultSink, logger *slog.Logger) *Manager {
	return &Manager{
		rooms:   make(map[int]*Room),
		loader:  loader,
		results: results,
		logger:  logger,
	}
}

// Room возвращает комнату аукциона, создавая её при необходимости.
// Загрузка пула - единственное I/O на пути подключения, и она завершается
// до того, как комната примет первую команду.
func (m *Manager) Room(ctx context.Context, auctionID int) (*Room, error) {
	m.mu.Lock()
	if r, ok := m.rooms[auctionID]; ok {
		m.mu.Unlock()
		return r, nil
	}
	m.mu.Unlock()

	setup, err := m.loader.LoadAuctionSetup(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("loading auction %d: %w", auctionID, err)
	}

	room := newRoom(setup, m.results,
		m.logger.With(slog.Int("auction_id", auctionID)),
		m.release,
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rooms[auctionID]; ok {
		// Параллельное подключение успело первым; наша комната ещё не
		// запущена, просто отбрасываем её.
		return existing, nil
	}
	m.rooms[auctionID] = room
	go room.run()

	m.logger.Info("auction room opened",
		slog.Int("auction_id", auctionID),
		slog.String("status", string(setup.Status)),
		slog.Int("lots", len(setup.Lots)),
	)
	return room, nil
}

func (m *Manager) release(auctionID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, auctionID)
	m.logger.Info("auction room closed", slog.Int("auction_id", auctionID))
}

// Shutdown останавливает все комнаты. Соединениям закрываются исходящие
// каналы; транспорт после этого закрывает сокеты.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[int]*Room)
	m.mu.Unlock()

	for _, r := range rooms {
		r.shutdown()
	}
}
