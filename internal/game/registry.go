package game

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tovaldes/postmaster/internal/config"
	"github.com/tovaldes/postmaster/internal/models"
	"github.com/tovaldes/postmaster/internal/store"
)

// Registry creates and looks up sessions. It owns room-code generation and
// the roster pre-population of new sessions.
type Registry struct {
	Store    store.Store
	Catalogs *config.Catalogs
}

// NewRegistry creates a session registry backed by the given store
func NewRegistry(s store.Store, catalogs *config.Catalogs) *Registry {
	return &Registry{Store: s, Catalogs: catalogs}
}

// GenerateRoomCode creates a random room code
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range RoomCodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = RoomCodeChars[rand.Intn(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}

// uniqueRoomCode generates a room code not used by any live session
func (r *Registry) uniqueRoomCode() string {
	for {
		code := GenerateRoomCode()
		if !r.Store.Exists(code) {
			return code
		}
	}
}

// CreateSession allocates a new session in the lobby phase with the fixed
// roster of empty slots, owned by the given facilitator
func (r *Registry) CreateSession(facilitatorID string) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		RoomCode:        r.uniqueRoomCode(),
		FacilitatorID:   facilitatorID,
		Phase:           models.PhaseLobby,
		Round:           0,
		Slots:           rosterSlots(r.Catalogs.Roster),
		IncidentHistory: make([]models.IncidentRecord, 0),
		CreatedAt:       now,
		LastActivity:    now,
	}
	if err := r.Store.Save(session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", session.RoomCode, err)
	}
	return session, nil
}

func rosterSlots(roster []config.SlotDef) []*models.Slot {
	slots := make([]*models.Slot, 0, len(roster))
	for _, def := range roster {
		capacity := def.Capacity
		if capacity <= 0 {
			capacity = 4
		}
		slots = append(slots, &models.Slot{
			Name:       def.Name,
			Kind:       models.SlotKind(def.Kind),
			Capacity:   capacity,
			Players:    make(map[string]*models.Player),
			Credits:    def.Credits,
			Reputation: def.Reputation,
			Payload:    make(map[string]any),
		})
	}
	return slots
}

// Get retrieves a session by room code
func (r *Registry) Get(roomCode string) (*models.Session, error) {
	session, exists := r.Store.Find(strings.ToUpper(strings.TrimSpace(roomCode)))
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomCode)
	}
	return session, nil
}

// Delete removes a session
func (r *Registry) Delete(roomCode string) bool {
	return r.Store.Delete(roomCode)
}

// ListAll returns every live session
func (r *Registry) ListAll() []*models.Session {
	return r.Store.ListAll()
}

// ListExpired returns sessions idle for longer than the threshold
func (r *Registry) ListExpired(idleThreshold time.Duration) []*models.Session {
	return r.Store.ListInactive(time.Now().Add(-idleThreshold))
}

// JoinSlot attaches a new player to a named slot. Joining is a lobby-phase
// action; reconnecting players keep their existing identity instead.
// Caller must hold the session lock.
func JoinSlot(session *models.Session, slotName, displayName string) (*models.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidation)
	}
	if len(displayName) > MaxDisplayNameLength {
		return nil, fmt.Errorf("%w: display name too long", ErrValidation)
	}
	if session.Phase != models.PhaseLobby {
		return nil, ErrGameAlreadyStarted
	}
	slot := session.Slot(slotName)
	if slot == nil {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotName)
	}
	if len(slot.Players) >= slot.Capacity {
		return nil, fmt.Errorf("%w: %s", ErrSlotFull, slot.Name)
	}
	for _, other := range session.Slots {
		for _, p := range other.Players {
			if strings.EqualFold(p.DisplayName, displayName) {
				return nil, fmt.Errorf("%w: display name %q is taken", ErrValidation, displayName)
			}
		}
	}

	player := &models.Player{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Role:        slot.Kind,
		SlotName:    slot.Name,
		JoinedAt:    time.Now(),
	}
	slot.Players[player.ID] = player
	session.Touch()
	return player, nil
}

// RemovePlayer detaches a player from their slot. Caller must hold the session lock.
func RemovePlayer(session *models.Session, playerID string) (*models.Player, error) {
	slot, player := session.FindPlayer(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	delete(slot.Players, playerID)
	session.Touch()
	return player, nil
}
