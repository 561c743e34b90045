package slotline

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// SlotState is a snapshot of one slot for external consumers (stream, exports)
type SlotState struct {
	ID       SlotID  `json:"id"`
	Lane     string  `json:"lane"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Heading  float64 `json:"heading"`
	Occupied bool    `json:"occupied"`
	Busy     bool    `json:"busy"`
	Vehicle  string  `json:"vehicle,omitempty"`
}

// TickEvent describes one completed engine tick
type TickEvent struct {
	Tick    int         `json:"tick"`
	Slots   []SlotState `json:"slots"`
	Removed []SlotID    `json:"removed,omitempty"`
}

// SlotObservation is one row of the flat observation table exposed to the environment
// wrapper: the slot's index in the stable action space, its center and whether an
// action may currently target it.
type SlotObservation struct {
	Index        int
	X            float64
	Y            float64
	Controllable bool
}

// Engine drives the world one tick at a time with a fixed internal ordering: slot
// advancement and regeneration first, then vehicle synchronization and command
// issuance, then merge binding for new ramp arrivals. The ordering is a correctness
// requirement: speed corrections must see freshly advanced slot positions and merge
// binding must see the slot state after removals and regenerations.
type Engine struct {
	fullLanes []*FullLane
	slots     []*Slot

	slotController    *SlotController
	vehicleController *VehicleController
	mergeController   *MergeController

	tick   int
	onTick []func(TickEvent)
	log    logrus.FieldLogger
}

func NewEngine(cfg *Config, fullLanes []*FullLane, lanes map[string]*Lane, routeGroups map[string]*RouteGroup, sim Simulator, options ...func(*Engine)) *Engine {
	engine := &Engine{
		fullLanes: fullLanes,
		log:       logrus.StandardLogger(),
	}
	for _, option := range options {
		option(engine)
	}

	generator := NewSlotGenerator(cfg.SlotLength, cfg.SlotGap, NewSequence(0))
	generator.GenerateForAll(fullLanes)

	engine.slotController = NewSlotController(generator, fullLanes, cfg.TimeStep)
	engine.vehicleController = NewVehicleController(sim, lanes, routeGroups, cfg, engine.log)
	engine.mergeController = NewMergeController(sim, fullLanes, cfg.RampMap, cfg.SafetyGap, engine.log)
	engine.rebuildSlotList()
	return engine
}

// WithLogger overrides the engine's logger
func WithLogger(log logrus.FieldLogger) func(*Engine) {
	return func(engine *Engine) {
		engine.log = log
	}
}

// OnTick registers a callback fired after every completed tick
func (engine *Engine) OnTick(fn func(TickEvent)) {
	engine.onTick = append(engine.onTick, fn)
}

// Slots returns the flat, stable-ordered slot list across all FullLanes. Its indices
// form the discrete action space.
func (engine *Engine) Slots() []*Slot {
	return engine.slots
}

func (engine *Engine) Tick() int {
	return engine.tick
}

func (engine *Engine) Vehicles() []*Vehicle {
	return engine.vehicleController.Vehicles()
}

// AddVehicle puts an externally created vehicle under per-tick management
func (engine *Engine) AddVehicle(vehicle *Vehicle) {
	engine.vehicleController.Add(vehicle)
}

// VehicleController exposes the action state machine for direct use
func (engine *Engine) VehicleController() *VehicleController {
	return engine.vehicleController
}

// Step advances the world one tick and reports the slots removed during it
func (engine *Engine) Step() []RemovedSlot {
	removed := engine.slotController.Step()
	engine.vehicleController.Step()
	engine.mergeController.Step(engine.vehicleController.Vehicles())
	engine.rebuildSlotList()
	engine.tick++

	if len(engine.onTick) != 0 {
		event := TickEvent{
			Tick:  engine.tick,
			Slots: engine.snapshotSlots(),
			Removed: lo.Map(removed, func(r RemovedSlot, _ int) SlotID {
				return r.Slot.ID
			}),
		}
		for _, fn := range engine.onTick {
			fn(event)
		}
	}
	return removed
}

// ExecuteSlotAction applies a wire action id to the slot at the given index of the flat
// list. Only an occupied, non-busy slot is controllable; everything else is rejected
// without touching slot state.
func (engine *Engine) ExecuteSlotAction(index int, actionID int) error {
	if index < 0 || index >= len(engine.slots) {
		return errors.Errorf("slot index %d out of range", index)
	}
	slot := engine.slots[index]
	if !slot.occupied || slot.busy {
		return ErrSlotBusy
	}
	action, err := SlotActionFromID(actionID)
	if err != nil {
		return err
	}
	vehicle := engine.vehicleController.findVehicle(slot.vehicleID)
	if vehicle == nil {
		return ErrNotBound
	}
	if err := engine.vehicleController.PerformAction(vehicle, action); err != nil {
		engine.log.WithFields(logrus.Fields{
			"slot":   slot.ID,
			"action": action,
		}).WithError(err).Debug("slot action rejected")
		return err
	}
	return nil
}

// Observations returns the flat observation rows for the environment wrapper. Slots
// whose geometry is not yet computed are skipped, keeping their index reserved.
func (engine *Engine) Observations() []SlotObservation {
	rows := make([]SlotObservation, 0, len(engine.slots))
	for idx, slot := range engine.slots {
		if !slot.hasGeometry {
			continue
		}
		rows = append(rows, SlotObservation{
			Index:        idx,
			X:            slot.center[0],
			Y:            slot.center[1],
			Controllable: slot.occupied && !slot.busy,
		})
	}
	return rows
}

func (engine *Engine) rebuildSlotList() {
	engine.slots = lo.FlatMap(engine.fullLanes, func(fl *FullLane, _ int) []*Slot {
		return fl.slots
	})
}

func (engine *Engine) snapshotSlots() []SlotState {
	return lo.Map(engine.slots, func(slot *Slot, _ int) SlotState {
		return SlotState{
			ID:       slot.ID,
			Lane:     slot.fullLane.ID,
			X:        slot.center[0],
			Y:        slot.center[1],
			Heading:  slot.heading,
			Occupied: slot.occupied,
			Busy:     slot.busy,
			Vehicle:  slot.vehicleID,
		}
	})
}
