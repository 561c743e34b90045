package slotline

import "testing"

func TestStepRemovesVehicleOnceRearClearsLane(t *testing.T) {
	fl := singleLaneFixture("e1")
	sim := NewMemorySimulator([]*FullLane{fl}, map[string]*Lane{fl.lanes[0].ID: fl.lanes[0]}, 0.1)
	// Front past the 100 m lane end, but 5 m of vehicle still on it
	sim.Spawn("veh_0", fl, 102.0, 10.0, 5.0)

	sim.Step()
	if !sim.Alive("veh_0") {
		t.Fatalf("A vehicle whose rear is still on the lane must survive")
	}

	// Three more ticks put the rear at 101, past the lane end
	sim.Step()
	sim.Step()
	sim.Step()
	if sim.Alive("veh_0") {
		t.Errorf("A vehicle whose rear cleared the lane must be removed")
	}
}
