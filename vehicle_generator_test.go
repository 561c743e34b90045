package slotline

import (
	"math"
	"testing"
)

func TestGenerateBoundVehicle(t *testing.T) {
	fl := singleLaneFixture("e1")
	lanes := map[string]*Lane{fl.lanes[0].ID: fl.lanes[0]}
	NewSlotGenerator(8.0, 3.0, NewSequence(0)).GenerateForFullLane(fl)
	sim := NewMemorySimulator([]*FullLane{fl}, lanes, 0.1)
	generator := NewVehicleGenerator(sim, testVehicleType(), NewSequence(0), nil)
	route := &Route{ID: "r_main", Edges: []string{"e1"}}

	slot := fl.slots[1]
	vehicle, err := generator.Generate(slot, route, nil)
	if err != nil {
		t.Fatalf("Spawning on a free slot must succeed, but got %v", err)
	}
	if vehicle.ID != "veh_0" {
		t.Errorf("Expected generated id veh_0, but got %s", vehicle.ID)
	}
	if vehicle.CurrentSlot != slot || !slot.occupied || slot.vehicleID != vehicle.ID {
		t.Errorf("The generated vehicle must occupy the requested slot")
	}

	tel, err := sim.Telemetry(vehicle.ID)
	if err != nil {
		t.Fatalf("The vehicle must exist in the simulator: %v", err)
	}
	// Slot center at arc 15, so the front bumper of a 5 m vehicle sits at 17.5
	if front := Round(tel.Front[0], 0.0001); front != 17.5 {
		t.Errorf("Expected the front bumper at arc 17.5, but got %f", front)
	}
	if Round(tel.Speed, 0.0001) != 10.0 {
		t.Errorf("The vehicle must depart at the slot speed 10, but got %f", tel.Speed)
	}
}

type departRecordingSimulator struct {
	*MemorySimulator
	departLane     string
	departPosition float64
}

func (sim *departRecordingSimulator) AddVehicle(vehicleID, routeID, typeID, laneID string, departPosition, departSpeed float64) error {
	sim.departLane = laneID
	sim.departPosition = departPosition
	return sim.MemorySimulator.AddVehicle(vehicleID, routeID, typeID, laneID, departPosition, departSpeed)
}

func TestGenerateDepartPositionIsLaneLocal(t *testing.T) {
	outer, _, lanes := twoLaneFixture()
	NewSlotGenerator(8.0, 3.0, NewSequence(0)).GenerateForFullLane(outer)
	sim := &departRecordingSimulator{MemorySimulator: NewMemorySimulator([]*FullLane{outer}, lanes, 0.1)}
	generator := NewVehicleGenerator(sim, testVehicleType(), NewSequence(0), nil)
	route := &Route{ID: "r_main", Edges: []string{"e1", "e2", "e3"}}

	// Slot 10 starts at arc 110, inside the second constituent lane (e2_0, spanning 100-200)
	slot := outer.slots[10]
	if _, err := generator.Generate(slot, route, nil); err != nil {
		t.Fatalf("Spawning on a second-lane slot must succeed, but got %v", err)
	}
	if sim.departLane != "e2_0" {
		t.Errorf("Expected depart lane e2_0, but got %s", sim.departLane)
	}
	// The insert position must be local to that lane, not the full-lane arc-length
	if Round(sim.departPosition, 0.0001) != 10.0 {
		t.Errorf("Expected lane-local depart position 10, but got %f", sim.departPosition)
	}
}

func TestGenerateRefusesOccupiedSlot(t *testing.T) {
	fl := singleLaneFixture("e1")
	lanes := map[string]*Lane{fl.lanes[0].ID: fl.lanes[0]}
	NewSlotGenerator(8.0, 3.0, NewSequence(0)).GenerateForFullLane(fl)
	sim := NewMemorySimulator([]*FullLane{fl}, lanes, 0.1)
	generator := NewVehicleGenerator(sim, testVehicleType(), NewSequence(0), nil)

	fl.slots[1].Occupy("veh_9")
	_, err := generator.Generate(fl.slots[1], &Route{ID: "r_main", Edges: []string{"e1"}}, nil)
	if err != ErrSlotTaken {
		t.Errorf("Expected ErrSlotTaken, but got %v", err)
	}
}

func TestGenerateUnboundNeedsDepartLane(t *testing.T) {
	fl := singleLaneFixture("e1")
	lanes := map[string]*Lane{fl.lanes[0].ID: fl.lanes[0]}
	sim := NewMemorySimulator([]*FullLane{fl}, lanes, 0.1)
	generator := NewVehicleGenerator(sim, testVehicleType(), NewSequence(0), nil)
	route := &Route{ID: "r_ramp", Edges: []string{"on_ramp1", "e1"}}

	if _, err := generator.Generate(nil, route, nil); err == nil {
		t.Errorf("An unbound spawn without a depart lane must be rejected")
	}

	vehicle, err := generator.Generate(nil, route, fl.lanes[0])
	if err != nil {
		t.Fatalf("An unbound spawn with a depart lane must succeed, but got %v", err)
	}
	if vehicle.CurrentSlot != nil {
		t.Errorf("An unbound vehicle must carry no slot binding")
	}
	tel, err := sim.Telemetry(vehicle.ID)
	if err != nil {
		t.Fatalf("The vehicle must exist in the simulator: %v", err)
	}
	if math.Abs(tel.Front[0]) > 1e-9 {
		t.Errorf("An unbound vehicle departs at the lane origin, but its front is at %f", tel.Front[0])
	}
}
