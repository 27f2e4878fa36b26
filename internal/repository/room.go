package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/room"
)

type RoomRepository interface {
	CreateRoom() *room.Room
	FindOrCreate(roomID string) (*room.Room, error)
	GetByID(roomID string) (*room.Room, error)
	RemoveIfEmpty(roomID string) bool
	ExpireWaiting(now time.Time) []*room.Room
	RunJanitor(ctx context.Context, interval time.Duration)
	Count() int
}

type roomRepository struct {
	logger      *slog.Logger
	config      room.Config
	waitTimeout time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	nextID uint64
	rooms  map[string]*room.Room
}

// NewRoomRepository keeps rooms in memory. waitTimeout of zero disables expiry of waiting rooms.
func NewRoomRepository(logger *slog.Logger, config room.Config, waitTimeout time.Duration) RoomRepository {
	return newRoomRepository(logger, config, waitTimeout, time.Now)
}

func newRoomRepository(logger *slog.Logger, config room.Config, waitTimeout time.Duration, now func() time.Time) *roomRepository {
	return &roomRepository{
		logger:      logger.With("component", "room_repository"),
		config:      config,
		waitTimeout: waitTimeout,
		now:         now,
		rooms:       make(map[string]*room.Room),
	}
}

func (that *roomRepository) CreateRoom() *room.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := strconv.FormatUint(that.nextID, 10)

	created := room.New(id, that.config, that.now())
	that.rooms[id] = created

	that.logger.Debug("room created", "room_id", id)

	return created
}

// FindOrCreate returns a joinable room. An empty id creates a new room.
func (that *roomRepository) FindOrCreate(roomID string) (*room.Room, error) {
	if roomID == "" {
		return that.CreateRoom(), nil
	}

	existing, err := that.GetByID(roomID)
	if err != nil {
		return nil, err
	}

	if err = existing.Joinable(); err != nil {
		return nil, err
	}

	return existing, nil
}

func (that *roomRepository) GetByID(roomID string) (*room.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	existing, ok := that.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrRoomNotFound, roomID)
	}

	return existing, nil
}

// RemoveIfEmpty drops the room once no player is connected to it.
func (that *roomRepository) RemoveIfEmpty(roomID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	existing, ok := that.rooms[roomID]
	if !ok || !existing.IsEmpty() {
		return false
	}

	delete(that.rooms, roomID)
	that.logger.Debug("room removed", "room_id", roomID)

	return true
}

// ExpireWaiting times out rooms that waited too long for a second player and removes them.
func (that *roomRepository) ExpireWaiting(now time.Time) []*room.Room {
	if that.waitTimeout <= 0 {
		return nil
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	var expired []*room.Room

	for id, candidate := range that.rooms {
		if !candidate.Expire(now, that.waitTimeout) {
			continue
		}

		delete(that.rooms, id)
		expired = append(expired, candidate)
	}

	return expired
}

// RunJanitor expires waiting rooms every interval until ctx is done.
func (that *roomRepository) RunJanitor(ctx context.Context, interval time.Duration) {
	log := that.logger.With("method", "RunJanitor")

	if interval <= 0 || that.waitTimeout <= 0 {
		log.Info("janitor disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, expired := range that.ExpireWaiting(that.now()) {
				log.Info("waiting room timed out", "room_id", expired.ID())
			}
		}
	}
}

func (that *roomRepository) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}
