package slotline

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type memoryVehicle struct {
	id        string
	fullLane  *FullLane
	arc       float64 // arc-length of the front bumper on the full lane shape
	speed     float64
	length    float64
	routeID   string
	laneIndex int
}

// MemorySimulator is a minimal in-process Simulator used by tests and the demo binary.
// Vehicles advance along their FullLane at the last commanded speed; kinematics are
// taken on faith, which matches what the coordination core assumes of the real
// simulator anyway.
type MemorySimulator struct {
	fullLanes []*FullLane
	lanes     map[string]*Lane
	vehicles  map[string]*memoryVehicle
	timeStep  float64
}

func NewMemorySimulator(fullLanes []*FullLane, lanes map[string]*Lane, timeStep float64) *MemorySimulator {
	return &MemorySimulator{
		fullLanes: fullLanes,
		lanes:     lanes,
		vehicles:  make(map[string]*memoryVehicle),
		timeStep:  timeStep,
	}
}

// Step advances every vehicle by its commanded speed. A vehicle disappears from the
// simulation once its rear bumper clears the end of its FullLane, same as leaving the
// modeled network.
func (sim *MemorySimulator) Step() {
	for id, vehicle := range sim.vehicles {
		vehicle.arc += vehicle.speed * sim.timeStep
		if vehicle.fullLane != nil && vehicle.arc-vehicle.length > vehicle.fullLane.totalLength {
			delete(sim.vehicles, id)
		}
	}
}

// Spawn registers a vehicle directly on a FullLane at the given front arc-length. Handy
// for tests that skip the AddVehicle/PlaceAt path.
func (sim *MemorySimulator) Spawn(vehicleID string, fl *FullLane, frontArc, speed, length float64) {
	sim.vehicles[vehicleID] = &memoryVehicle{
		id:       vehicleID,
		fullLane: fl,
		arc:      frontArc,
		speed:    speed,
		length:   length,
	}
}

// Remove makes the vehicle vanish, as if the simulator despawned it
func (sim *MemorySimulator) Remove(vehicleID string) {
	delete(sim.vehicles, vehicleID)
}

func (sim *MemorySimulator) Alive(vehicleID string) bool {
	_, ok := sim.vehicles[vehicleID]
	return ok
}

func (sim *MemorySimulator) Telemetry(vehicleID string) (Telemetry, error) {
	vehicle, ok := sim.vehicles[vehicleID]
	if !ok {
		return Telemetry{}, ErrVehicleGone
	}
	front, heading := interpolate(vehicle.fullLane.fullShape, vehicle.arc)
	lane := vehicle.fullLane.laneAt(vehicle.arc)
	tel := Telemetry{
		Front:   front,
		Heading: heading,
		Speed:   vehicle.speed,
	}
	if lane != nil {
		tel.EdgeID = lane.SegmentID
		tel.LaneID = lane.ID
		tel.LaneIndex = lane.Index
		tel.LanePosition = vehicle.arc - vehicle.fullLane.laneOffset(lane)
	}
	return tel, nil
}

func (sim *MemorySimulator) SetSpeed(vehicleID string, speed float64) error {
	vehicle, ok := sim.vehicles[vehicleID]
	if !ok {
		return ErrVehicleGone
	}
	vehicle.speed = speed
	return nil
}

// ChangeLane teleports the vehicle sideways onto the registered neighbor FullLane that
// contains a lane with the requested index, keeping the closest arc-length position.
func (sim *MemorySimulator) ChangeLane(vehicleID string, laneIndex int) error {
	vehicle, ok := sim.vehicles[vehicleID]
	if !ok {
		return ErrVehicleGone
	}
	front, _ := interpolate(vehicle.fullLane.fullShape, vehicle.arc)
	for _, neighbor := range vehicle.fullLane.neighbors {
		target := neighbor.FullLane
		if lane := target.laneAt(nearestArc(target.fullShape, front)); lane != nil && lane.Index == laneIndex {
			vehicle.fullLane = target
			vehicle.arc = nearestArc(target.fullShape, front)
			vehicle.laneIndex = laneIndex
			return nil
		}
	}
	return errors.Errorf("no adjacent lane with index %d for vehicle %s", laneIndex, vehicleID)
}

func (sim *MemorySimulator) SetRoute(vehicleID string, routeID string) error {
	vehicle, ok := sim.vehicles[vehicleID]
	if !ok {
		return ErrVehicleGone
	}
	vehicle.routeID = routeID
	return nil
}

func (sim *MemorySimulator) AddVehicle(vehicleID, routeID, typeID, laneID string, departPosition, departSpeed float64) error {
	if _, ok := sim.vehicles[vehicleID]; ok {
		return errors.Errorf("vehicle %s already exists", vehicleID)
	}
	lane, ok := sim.lanes[laneID]
	if !ok {
		return errors.Errorf("unknown lane %s", laneID)
	}
	fl := sim.fullLaneOf(lane)
	if fl == nil {
		return errors.Errorf("lane %s belongs to no full lane", laneID)
	}
	sim.vehicles[vehicleID] = &memoryVehicle{
		id:        vehicleID,
		fullLane:  fl,
		arc:       fl.laneOffset(lane) + departPosition,
		speed:     departSpeed,
		routeID:   routeID,
		laneIndex: lane.Index,
	}
	return nil
}

func (sim *MemorySimulator) PlaceAt(vehicleID string, edgeID string, laneIndex int, front orb.Point, heading float64) error {
	vehicle, ok := sim.vehicles[vehicleID]
	if !ok {
		return ErrVehicleGone
	}
	vehicle.arc = nearestArc(vehicle.fullLane.fullShape, front)
	vehicle.laneIndex = laneIndex
	return nil
}

func (sim *MemorySimulator) fullLaneOf(lane *Lane) *FullLane {
	for _, fl := range sim.fullLanes {
		for _, candidate := range fl.lanes {
			if candidate == lane {
				return fl
			}
		}
	}
	return nil
}
