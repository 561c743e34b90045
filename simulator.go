package slotline

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ErrVehicleGone is returned by a Simulator when the queried vehicle is no longer part
// of the simulation.
var ErrVehicleGone = errors.New("vehicle is gone from the simulator")

// Telemetry is the live state of one vehicle as reported by the traffic simulator.
// Front is the position of the vehicle's front bumper; Heading is in degrees.
type Telemetry struct {
	Front        orb.Point
	Heading      float64
	Speed        float64
	EdgeID       string
	LaneID       string
	LaneIndex    int
	LanePosition float64 // longitudinal position of the front on the current lane
}

// Simulator is the boundary to the external traffic simulator owning ground-truth
// vehicle state. The coordination core reads telemetry and issues per-tick commands; it
// never owns vehicle dynamics itself.
type Simulator interface {
	// Alive reports whether the vehicle is still present in the simulation
	Alive(vehicleID string) bool
	// Telemetry returns the vehicle's live state or ErrVehicleGone
	Telemetry(vehicleID string) (Telemetry, error)
	// SetSpeed commands a target speed for the next tick(s)
	SetSpeed(vehicleID string, speed float64) error
	// ChangeLane moves the vehicle to the lane with the given index on its current road
	ChangeLane(vehicleID string, laneIndex int) error
	// SetRoute switches the vehicle to another known route
	SetRoute(vehicleID string, routeID string) error
	// AddVehicle inserts a new vehicle on the given lane
	AddVehicle(vehicleID, routeID, typeID, laneID string, departPosition, departSpeed float64) error
	// PlaceAt teleports the vehicle's front bumper to an exact coordinate and heading
	PlaceAt(vehicleID string, edgeID string, laneIndex int, front orb.Point, heading float64) error
}
