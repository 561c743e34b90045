package slotline

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrSlotTaken is returned when a vehicle is requested on an already occupied slot.
var ErrSlotTaken = errors.New("slot is already occupied")

// VehicleGenerator creates bound entities for new vehicles. Route selection and spawn
// cadence are the caller's policy; the generator only needs a slot (or none, for ramp
// entries) and a route.
type VehicleGenerator struct {
	sim         Simulator
	seq         *Sequence
	defaultType *VehicleType
	log         logrus.FieldLogger
}

func NewVehicleGenerator(sim Simulator, defaultType *VehicleType, seq *Sequence, log logrus.FieldLogger) *VehicleGenerator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &VehicleGenerator{
		sim:         sim,
		seq:         seq,
		defaultType: defaultType,
		log:         log,
	}
}

// Generate creates a vehicle and inserts it into the simulator. With a slot the vehicle
// is spawned occupying it, placed front-first at the slot center offset by half a
// vehicle length along the slot heading. Without a slot the vehicle departs at the
// origin of departLane (the ramp case, bound later by the merge controller).
func (generator *VehicleGenerator) Generate(slot *Slot, route *Route, departLane *Lane) (*Vehicle, error) {
	if slot != nil && slot.occupied {
		return nil, ErrSlotTaken
	}

	vehicleID := fmt.Sprintf("veh_%d", generator.seq.Next())
	vehicle := &Vehicle{
		ID:    vehicleID,
		Type:  generator.defaultType,
		Route: route,
	}

	if slot != nil {
		slot.Occupy(vehicleID)
		vehicle.CurrentSlot = slot

		lane := slot.fullLane.laneAt(slot.positionStart)
		if lane == nil {
			slot.Release()
			return nil, errors.Errorf("slot %d resolves to no lane", slot.ID)
		}
		departPosition := slot.positionStart - slot.fullLane.laneOffset(lane)
		if err := generator.sim.AddVehicle(vehicleID, route.ID, generator.defaultType.ID, lane.ID, departPosition, slot.speed); err != nil {
			slot.Release()
			return nil, errors.Wrapf(err, "Can't add vehicle %s", vehicleID)
		}

		headingRad := degreesToRadians(slot.heading)
		half := generator.defaultType.Length / 2.0
		front := orb.Point{
			slot.center[0] + half*math.Cos(headingRad),
			slot.center[1] + half*math.Sin(headingRad),
		}
		if err := generator.sim.PlaceAt(vehicleID, lane.SegmentID, lane.Index, front, slot.heading); err != nil {
			generator.log.WithField("vehicle", vehicleID).WithError(err).Warn("exact placement rejected")
		}
		return vehicle, nil
	}

	if departLane == nil {
		return nil, errors.New("unbound vehicle needs a depart lane")
	}
	if err := generator.sim.AddVehicle(vehicleID, route.ID, generator.defaultType.ID, departLane.ID, 0.0, 0.0); err != nil {
		return nil, errors.Wrapf(err, "Can't add vehicle %s", vehicleID)
	}
	return vehicle, nil
}
