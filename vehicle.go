package slotline

import (
	"fmt"

	"github.com/paulmach/orb"
)

// VehicleType carries the physical parameters relevant to slot coordination
type VehicleType struct {
	ID       string
	Length   float64
	MaxSpeed float64
}

// Vehicle mirrors one simulator vehicle and carries its slot bindings. A vehicle has at
// most one current slot; PreviousSlot is set only while an advance/retreat/lane-change
// is in flight and is cleared by completion detection.
type Vehicle struct {
	ID           string
	Type         *VehicleType
	Route        *Route
	CurrentSlot  *Slot
	PreviousSlot *Slot

	// Mirrored simulator telemetry, refreshed every tick
	Center    orb.Point
	Heading   float64
	Speed     float64
	EdgeID    string
	LaneID    string
	LaneIndex int
}

func (vehicle *Vehicle) String() string {
	slotID := "-"
	if vehicle.CurrentSlot != nil {
		slotID = fmt.Sprintf("%d", vehicle.CurrentSlot.ID)
	}
	return fmt.Sprintf("Vehicle(id=%s, slot=%s, speed=%.2f, edge=%s)", vehicle.ID, slotID, vehicle.Speed, vehicle.EdgeID)
}

// bindSlot rebinds the vehicle to target as part of an in-flight action, keeping the
// source slot claimed until completion detection releases it
func (vehicle *Vehicle) bindSlot(target *Slot) {
	vehicle.PreviousSlot = vehicle.CurrentSlot
	vehicle.CurrentSlot = target
	target.Occupy(vehicle.ID)
}

// releaseSlots clears both bindings and the occupancy and busy flags on each bound slot
func (vehicle *Vehicle) releaseSlots() {
	if vehicle.CurrentSlot != nil {
		vehicle.CurrentSlot.Release()
		vehicle.CurrentSlot.busy = false
		vehicle.CurrentSlot = nil
	}
	if vehicle.PreviousSlot != nil {
		vehicle.PreviousSlot.Release()
		vehicle.PreviousSlot.busy = false
		vehicle.PreviousSlot = nil
	}
}
