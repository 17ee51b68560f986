package repository

import (
	"sort"
	"sync"

	"github.com/rocketscienceinc/duelrooms-backend/internal/apperror"
	"github.com/rocketscienceinc/duelrooms-backend/internal/entity"
)

// RoomSlot holds one room and its game state. Room and State may only be touched
// inside the callbacks of RoomRepository, which hold the slot lock.
type RoomSlot struct {
	Room  *entity.Room
	State *entity.GameState

	mu      sync.Mutex
	removed bool
}

type RoomRepository interface {
	// WithRoom runs fn with the room locked, ErrRoomNotFound when the code is unknown.
	WithRoom(code string, fn func(slot *RoomSlot) error) error
	// WithRoomOrCreate runs fn with the room locked, creating it first when the code is unknown.
	WithRoomOrCreate(code string, create func() *entity.Room, fn func(slot *RoomSlot) error) error
	// RoomsOf returns the codes of every room the connection is a member of.
	RoomsOf(connectionID string) []string
	// Dump returns deep copies of all rooms and game states.
	Dump() ([]*entity.Room, map[string]*entity.GameState)
	Count() int
}

type memoryRooms struct {
	mu          sync.Mutex
	slots       map[string]*RoomSlot
	connections map[string]map[string]struct{}
}

func NewRoomRepository() RoomRepository {
	return &memoryRooms{
		slots:       make(map[string]*RoomSlot),
		connections: make(map[string]map[string]struct{}),
	}
}

func (that *memoryRooms) WithRoom(code string, fn func(slot *RoomSlot) error) error {
	code = entity.NormalizeCode(code)

	for {
		that.mu.Lock()
		slot, ok := that.slots[code]
		that.mu.Unlock()

		if !ok {
			return apperror.ErrRoomNotFound
		}

		if done, err := that.run(code, slot, fn); done {
			return err
		}
	}
}

func (that *memoryRooms) WithRoomOrCreate(code string, create func() *entity.Room, fn func(slot *RoomSlot) error) error {
	code = entity.NormalizeCode(code)

	for {
		that.mu.Lock()
		slot, ok := that.slots[code]
		if !ok {
			room := create()
			room.Code = code
			slot = &RoomSlot{Room: room}
			that.slots[code] = slot
		}
		that.mu.Unlock()

		if done, err := that.run(code, slot, fn); done {
			return err
		}
	}
}

// run - executes fn under the slot lock and syncs the indexes afterwards.
// Reports false when the slot was deleted before the lock was acquired.
func (that *memoryRooms) run(code string, slot *RoomSlot, fn func(slot *RoomSlot) error) (bool, error) {
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.removed {
		return false, nil
	}

	before := memberIDs(slot.Room)
	err := fn(slot)
	after := memberIDs(slot.Room)

	that.mu.Lock()
	defer that.mu.Unlock()

	for id := range before {
		if _, ok := after[id]; !ok {
			that.unindex(id, code)
		}
	}

	for id := range after {
		if _, ok := before[id]; !ok {
			that.index(id, code)
		}
	}

	if slot.Room.IsEmpty() {
		slot.removed = true
		slot.State = nil
		delete(that.slots, code)
	}

	return true, err
}

func (that *memoryRooms) index(connectionID, code string) {
	codes, ok := that.connections[connectionID]
	if !ok {
		codes = make(map[string]struct{})
		that.connections[connectionID] = codes
	}
	codes[code] = struct{}{}
}

func (that *memoryRooms) unindex(connectionID, code string) {
	codes := that.connections[connectionID]
	delete(codes, code)
	if len(codes) == 0 {
		delete(that.connections, connectionID)
	}
}

func (that *memoryRooms) RoomsOf(connectionID string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	codes := make([]string, 0, len(that.connections[connectionID]))
	for code := range that.connections[connectionID] {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return codes
}

func (that *memoryRooms) Dump() ([]*entity.Room, map[string]*entity.GameState) {
	that.mu.Lock()
	slots := make([]*RoomSlot, 0, len(that.slots))
	for _, slot := range that.slots {
		slots = append(slots, slot)
	}
	that.mu.Unlock()

	rooms := make([]*entity.Room, 0, len(slots))
	states := make(map[string]*entity.GameState)

	for _, slot := range slots {
		slot.mu.Lock()
		// a room being created is empty until its first member is seated
		if !slot.removed && !slot.Room.IsEmpty() {
			rooms = append(rooms, slot.Room.Clone())
			if slot.State != nil {
				states[slot.Room.Code] = slot.State.Clone()
			}
		}
		slot.mu.Unlock()
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Code < rooms[j].Code })

	return rooms, states
}

func (that *memoryRooms) Count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.slots)
}

func memberIDs(room *entity.Room) map[string]struct{} {
	ids := make(map[string]struct{}, len(room.Members))
	for _, member := range room.Members {
		ids[member.ID] = struct{}{}
	}
	return ids
}
