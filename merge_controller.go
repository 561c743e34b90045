package slotline

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// MergeController binds vehicles entering from ramps to the nearest eligible mainline
// slot. The ramp-edge-prefix to mainline-start-lane mapping is external configuration; a
// mapping whose target lane does not exist is treated as a configuration gap and
// silently skipped.
type MergeController struct {
	sim           Simulator
	fullLanesByID map[string]*FullLane // keyed by StartLaneID
	rampMap       map[string]string    // ramp edge prefix -> mainline start lane id
	rampPrefixes  []string             // longest first, so the most specific mapping wins
	safetyGap     float64
	log           logrus.FieldLogger
}

func NewMergeController(sim Simulator, fullLanes []*FullLane, rampMap map[string]string, safetyGap float64, log logrus.FieldLogger) *MergeController {
	if log == nil {
		log = logrus.StandardLogger()
	}
	byID := make(map[string]*FullLane, len(fullLanes))
	for _, fl := range fullLanes {
		byID[fl.StartLaneID()] = fl
	}
	prefixes := make([]string, 0, len(rampMap))
	for prefix := range rampMap {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})
	return &MergeController{
		sim:           sim,
		fullLanesByID: byID,
		rampMap:       rampMap,
		rampPrefixes:  prefixes,
		safetyGap:     safetyGap,
		log:           log,
	}
}

// Step tries to bind every still-unbound ramp vehicle to a mainline slot. A vehicle
// that finds no eligible slot this tick is simply retried on later ticks.
func (controller *MergeController) Step(vehicles []*Vehicle) {
	for _, vehicle := range vehicles {
		if vehicle.CurrentSlot != nil {
			continue
		}
		entryEdge := vehicle.Route.EntryEdge()
		for _, rampPrefix := range controller.rampPrefixes {
			if !strings.HasPrefix(entryEdge, rampPrefix) {
				continue
			}
			fl, ok := controller.fullLanesByID[controller.rampMap[rampPrefix]]
			if !ok {
				// Configuration gap, the world keeps advancing
				continue
			}
			tel, err := controller.sim.Telemetry(vehicle.ID)
			if err != nil {
				continue
			}
			candidate := controller.findNearestSlot(fl, tel)
			if candidate == nil {
				continue
			}
			candidate.Occupy(vehicle.ID)
			vehicle.CurrentSlot = candidate
			controller.log.WithFields(logrus.Fields{
				"vehicle": vehicle.ID,
				"slot":    candidate.ID,
				"lane":    fl.ID,
			}).Info("merge binding established")
			break
		}
	}
}

// findNearestSlot returns the unoccupied slot whose center is closest to the vehicle
// front, or nil when even the closest one is outside the safety gap
func (controller *MergeController) findNearestSlot(fl *FullLane, tel Telemetry) *Slot {
	var best *Slot
	bestDist := math.Inf(1)
	for _, slot := range fl.slots {
		if slot.occupied || !slot.hasGeometry {
			continue
		}
		dist := findDistance(tel.Front, slot.center)
		if dist < bestDist && dist < controller.safetyGap {
			bestDist = dist
			best = slot
		}
	}
	return best
}
