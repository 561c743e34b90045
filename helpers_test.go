package slotline

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetLevel(logrus.PanicLevel)
}

// straightLane builds a single straight lane along y=yOffset spanning [xFrom, xTo]
func straightLane(id string, index int, segmentID string, yOffset, xFrom, xTo, speed float64) *Lane {
	shape := orb.LineString{{xFrom, yOffset}, {xTo, yOffset}}
	return &Lane{
		ID:        id,
		Index:     index,
		Speed:     speed,
		Length:    math.Abs(xTo - xFrom),
		Shape:     shape,
		SegmentID: segmentID,
	}
}

// singleLaneFixture is a 100 m FullLane at y=0 composed of one lane with speed 10
func singleLaneFixture(id string) *FullLane {
	lane := straightLane(id+"_0", 0, id, 0, 0, 100, 10)
	return NewFullLane("full_"+id, []*Lane{lane})
}

// twoLaneFixture builds two parallel 300 m FullLanes (outer index 0 at y=0, inner
// index 1 at y=3.5) of three segments each, registered as lateral neighbors
func twoLaneFixture() (outer, inner *FullLane, lanes map[string]*Lane) {
	lanes = map[string]*Lane{}
	track := func(lane *Lane) *Lane {
		lanes[lane.ID] = lane
		return lane
	}
	outerLanes := []*Lane{
		track(straightLane("e1_0", 0, "e1", 0, 0, 100, 10)),
		track(straightLane("e2_0", 0, "e2", 0, 100, 200, 10)),
		track(straightLane("e3_0", 0, "e3", 0, 200, 300, 10)),
	}
	innerLanes := []*Lane{
		track(straightLane("e1_1", 1, "e1", 3.5, 0, 100, 10)),
		track(straightLane("e2_1", 1, "e2", 3.5, 100, 200, 10)),
		track(straightLane("e3_1", 1, "e3", 3.5, 200, 300, 10)),
	}
	outer = NewFullLane("main_0", outerLanes)
	inner = NewFullLane("main_1", innerLanes)
	outer.RegisterNeighbor(0, 300, inner, SIDE_LEFT)
	inner.RegisterNeighbor(0, 300, outer, SIDE_RIGHT)
	return outer, inner, lanes
}

func testVehicleType() *VehicleType {
	return &VehicleType{ID: "car", Length: 5.0, MaxSpeed: 33.3}
}

// bindVehicle occupies the slot and returns a vehicle bound to it
func bindVehicle(id string, slot *Slot) *Vehicle {
	slot.Occupy(id)
	return &Vehicle{
		ID:          id,
		Type:        testVehicleType(),
		Route:       &Route{ID: "r_main", Edges: []string{"e1", "e2", "e3"}},
		CurrentSlot: slot,
	}
}
