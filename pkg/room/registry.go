package room

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pokerroom-server/internal/rng"
	"pokerroom-server/pkg/poker/holdem"
)

// seat limits allowed for a room
const (
	MinSeats = 2
	MaxSeats = 10
)

// Registry is the directory of live rooms. It owns coordinator lifecycle;
// each coordinator is authoritative for its own room's state.
type Registry struct {
	store  Store
	config Config

	lock         sync.Mutex
	coordinators map[string]*Coordinator
}

// NewRegistry returns a registry backed by the given snapshot store
func NewRegistry(store Store, config Config) *Registry {
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}

	if config.RNG == nil {
		config.RNG = rng.Crypto{}
	}

	return &Registry{
		store:        store,
		config:       config,
		coordinators: make(map[string]*Coordinator),
	}
}

// CreateRoom creates a waiting room and starts its coordinator
func (r *Registry) CreateRoom(ctx context.Context, name, creatorID string, seatLimit, minBet, maxBet int) (*Coordinator, *View, error) {
	if seatLimit < MinSeats || seatLimit > MaxSeats {
		return nil, nil, holdem.RuleError("seat limit must be between 2 and 10")
	}

	if minBet <= 0 {
		return nil, nil, holdem.RuleError("minimum bet must be positive")
	}

	if maxBet != 0 && maxBet < minBet {
		return nil, nil, holdem.RuleError("maximum bet cannot be below the minimum bet")
	}

	now := r.config.Clock.Now()
	rm := &Room{
		ID:        uuid.New().String(),
		Name:      name,
		Creator:   creatorID,
		CreatedAt: now,
		UpdatedAt: now,
		Game:      holdem.NewGame(seatLimit, minBet, maxBet),
	}

	snapshot, err := rm.MarshalSnapshot()
	if err != nil {
		return nil, nil, err
	}

	if err := r.store.Put(ctx, rm.Key(), snapshot); err != nil {
		return nil, nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	c := NewCoordinator(rm, r.store, r.config, r.drop)
	r.coordinators[rm.ID] = c

	logrus.WithFields(logrus.Fields{"room": rm.ID, "creator": creatorID}).Info("room created")
	return c, RenderView(rm, creatorID), nil
}

// Coordinator returns the live coordinator for the room, reviving it from
// the snapshot store if the room exists but is not running
func (r *Registry) Coordinator(ctx context.Context, roomID string) (*Coordinator, error) {
	r.lock.Lock()
	if c, ok := r.coordinators[roomID]; ok {
		r.lock.Unlock()
		return c, nil
	}
	r.lock.Unlock()

	b, err := r.store.Get(ctx, KeyPrefix+roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrRoomNotFound
		}

		return nil, err
	}

	rm, err := UnmarshalSnapshot(b)
	if err != nil {
		return nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	// lost the race to another reviver
	if c, ok := r.coordinators[roomID]; ok {
		return c, nil
	}

	c := NewCoordinator(rm, r.store, r.config, r.drop)
	r.coordinators[roomID] = c

	logrus.WithField("room", roomID).Info("room revived from snapshot store")
	return c, nil
}

// drop forgets a finished room's coordinator
func (r *Registry) drop(roomID string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.coordinators, roomID)
}

// ListOpen enumerates joinable rooms: waiting, with open seats, newest
// first. The listing reads the snapshot store and may lag the coordinators
// by the persistence latency.
func (r *Registry) ListOpen(ctx context.Context) ([]Summary, error) {
	snapshots, err := r.store.ListWithPrefix(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(snapshots))
	for _, b := range snapshots {
		rm, err := UnmarshalSnapshot(b)
		if err != nil {
			logrus.WithError(err).Warn("skipping undecodable room snapshot")
			continue
		}

		if rm.Game.Status == holdem.StatusWaiting && rm.HasOpenSeats() {
			summaries = append(summaries, rm.Summarize())
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return summaries, nil
}
