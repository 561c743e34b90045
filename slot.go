package slotline

import (
	"fmt"

	"github.com/paulmach/orb"
)

type SlotID int

// Slot is a moving reservation of longitudinal road space on a FullLane. Its 1-D state
// is the arc-length interval [positionStart, positionStart+length]; the Cartesian center
// and heading are derived from the owning lane's geometry and are invalid until the
// first refreshGeometry call.
type Slot struct {
	ID            SlotID
	fullLane      *FullLane
	positionStart float64
	length        float64
	gapToPrevious float64
	speed         float64

	center      orb.Point
	heading     float64
	hasGeometry bool

	occupied  bool
	vehicleID string
	busy      bool
}

func (slot *Slot) String() string {
	return fmt.Sprintf("Slot(id=%d, lane=%s, range=(%.2f-%.2f), occupied=%t, busy=%t, vehicle=%s)",
		slot.ID, slot.fullLane.ID, slot.positionStart, slot.PositionEnd(), slot.occupied, slot.busy, slot.vehicleID)
}

func (slot *Slot) FullLane() *FullLane {
	return slot.fullLane
}

func (slot *Slot) PositionStart() float64 {
	return slot.positionStart
}

func (slot *Slot) PositionEnd() float64 {
	return slot.positionStart + slot.length
}

func (slot *Slot) Length() float64 {
	return slot.length
}

func (slot *Slot) Speed() float64 {
	return slot.speed
}

// Center returns the interpolated Cartesian midpoint. The boolean is false until the
// geometry has been computed at least once.
func (slot *Slot) Center() (orb.Point, bool) {
	return slot.center, slot.hasGeometry
}

func (slot *Slot) Heading() float64 {
	return slot.heading
}

func (slot *Slot) Occupied() bool {
	return slot.occupied
}

func (slot *Slot) VehicleID() string {
	return slot.vehicleID
}

func (slot *Slot) Busy() bool {
	return slot.busy
}

// Occupy binds the vehicle to the slot
func (slot *Slot) Occupy(vehicleID string) {
	slot.occupied = true
	slot.vehicleID = vehicleID
}

// Release clears occupancy and the bound vehicle together
func (slot *Slot) Release() {
	slot.occupied = false
	slot.vehicleID = ""
}

// refreshGeometry recomputes center and heading at the slot's midpoint arc-length
func (slot *Slot) refreshGeometry() {
	midpoint := slot.positionStart + slot.length/2.0
	slot.center, slot.heading = interpolate(slot.fullLane.fullShape, midpoint)
	slot.hasGeometry = true
}
