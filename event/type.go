package event

import (
	"fmt"

	"github.com/lixenwraith/collide/physics"
)

// EventType represents the type of world event
type EventType uint8

const (
	// EventCollision reports one resolved contact
	// Trigger: resolver pass of a fixed update | Payload: Contact
	EventCollision EventType = iota

	// EventEntitySpawned reports a body joining the world
	// Trigger: SpawnEntity, or end of step for spawns requested mid-step | Payload: Entity
	EventEntitySpawned

	// EventEntityRemoved reports a body leaving the world
	// Trigger: RemoveEntity, or end of step for removals requested mid-step | Payload: Entity
	EventEntityRemoved

	// EventStateChanged reports a lifecycle transition
	// Trigger: Start, Pause, Resume, Dispose | Payload: State
	EventStateChanged
)

func (t EventType) String() string {
	switch t {
	case EventCollision:
		return "collision"
	case EventEntitySpawned:
		return "entity_spawned"
	case EventEntityRemoved:
		return "entity_removed"
	case EventStateChanged:
		return "state_changed"
	default:
		return fmt.Sprintf("event(%d)", uint8(t))
	}
}

// Event is a value-typed world notification, safe to copy across goroutines
type Event struct {
	Type    EventType
	Tick    uint64 // Fixed update counter at emission
	Contact physics.Contact
	Entity  physics.EntityID
	State   string
}

// Handler receives events on the goroutine that owns the world
type Handler func(Event)
