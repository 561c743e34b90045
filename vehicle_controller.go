package slotline

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Action precondition failures. All of them resolve to "do nothing this tick"; the
// caller may retry on a later tick.
var (
	ErrNotBound        = errors.New("vehicle has no bound slot")
	ErrSlotBusy        = errors.New("slot is claimed by an in-flight action")
	ErrTargetOccupied  = errors.New("target slot is occupied")
	ErrNoTargetSlot    = errors.New("no eligible target slot")
	ErrRestrictedEdge  = errors.New("lane change not allowed on ramp or internal edge")
	ErrUnknownFullLane = errors.New("slot belongs to no known full lane")
)

// VehicleController synchronizes bound vehicles with their slots every tick and runs the
// slot-action state machine. All slot flag mutations happen on the single control
// thread; the busy flag expresses a reservation spanning multiple ticks, not a lock
// against concurrent access.
type VehicleController struct {
	sim         Simulator
	vehicles    []*Vehicle
	lanes       map[string]*Lane
	routeGroups map[string]*RouteGroup // keyed by member route id

	syncTolerance       float64
	completionThreshold float64
	speedGain           float64
	maxAdjust           float64
	lateralRadius       float64
	rerouteDistance     float64

	log logrus.FieldLogger
}

func NewVehicleController(sim Simulator, lanes map[string]*Lane, routeGroups map[string]*RouteGroup, cfg *Config, log logrus.FieldLogger) *VehicleController {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &VehicleController{
		sim:                 sim,
		lanes:               lanes,
		routeGroups:         routeGroups,
		syncTolerance:       cfg.SyncTolerance,
		completionThreshold: cfg.CompletionThreshold,
		speedGain:           cfg.SpeedGain,
		maxAdjust:           cfg.MaxAdjust,
		lateralRadius:       cfg.LateralRadius,
		rerouteDistance:     cfg.RerouteDistance,
		log:                 log,
	}
}

func (controller *VehicleController) Vehicles() []*Vehicle {
	return controller.vehicles
}

// Add puts a vehicle under management
func (controller *VehicleController) Add(vehicle *Vehicle) {
	controller.vehicles = append(controller.vehicles, vehicle)
}

// findVehicle returns the managed vehicle with the given id, or nil
func (controller *VehicleController) findVehicle(vehicleID string) *Vehicle {
	for _, vehicle := range controller.vehicles {
		if vehicle.ID == vehicleID {
			return vehicle
		}
	}
	return nil
}

// Step processes every managed vehicle: liveness, telemetry sync, exit detection,
// action-completion detection, speed synchronization and the reroute check, in that
// order. Vehicles that vanished from the simulator are dropped from the managed list
// with their slot bindings released.
func (controller *VehicleController) Step() {
	retained := make([]*Vehicle, 0, len(controller.vehicles))
	for _, vehicle := range controller.vehicles {
		if !controller.sim.Alive(vehicle.ID) {
			controller.log.WithField("vehicle", vehicle.ID).Info("vehicle left the simulation, releasing its slots")
			vehicle.releaseSlots()
			continue
		}

		tel, err := controller.sim.Telemetry(vehicle.ID)
		if err != nil {
			controller.log.WithField("vehicle", vehicle.ID).WithError(err).Warn("telemetry failed, dropping vehicle")
			vehicle.releaseSlots()
			continue
		}
		controller.syncTelemetry(vehicle, tel)

		// Exit detection: an off-ramp edge means the vehicle is leaving the coordinated
		// mainline, so both bindings are released.
		if vehicle.CurrentSlot != nil && classifyEdge(tel.EdgeID) == SEGMENT_OFF_RAMP {
			controller.log.WithField("vehicle", vehicle.ID).Debug("vehicle exits via off-ramp")
			vehicle.releaseSlots()
		}

		controller.detectCompletion(vehicle)
		if err := controller.syncSpeed(vehicle); err != nil {
			controller.log.WithField("vehicle", vehicle.ID).WithError(err).Warn("speed command rejected, dropping vehicle")
			vehicle.releaseSlots()
			continue
		}
		controller.checkReroute(vehicle, tel)

		retained = append(retained, vehicle)
	}
	controller.vehicles = retained
}

// syncTelemetry mirrors simulator state onto the vehicle entity, deriving the geometric
// center from the reported front bumper position
func (controller *VehicleController) syncTelemetry(vehicle *Vehicle, tel Telemetry) {
	headingRad := degreesToRadians(tel.Heading)
	half := vehicle.Type.Length / 2.0
	vehicle.Center = orb.Point{
		tel.Front[0] - half*math.Cos(headingRad),
		tel.Front[1] - half*math.Sin(headingRad),
	}
	vehicle.Heading = tel.Heading
	vehicle.Speed = tel.Speed
	vehicle.EdgeID = tel.EdgeID
	vehicle.LaneID = tel.LaneID
	vehicle.LaneIndex = tel.LaneIndex
}

// alongSlotOffset projects the vector from the vehicle center to the slot center onto
// the slot's heading direction, giving the signed longitudinal offset
func alongSlotOffset(vehicle *Vehicle, slot *Slot) float64 {
	headingRad := degreesToRadians(slot.heading)
	dx := slot.center[0] - vehicle.Center[0]
	dy := slot.center[1] - vehicle.Center[1]
	return dx*math.Cos(headingRad) + dy*math.Sin(headingRad)
}

// detectCompletion finishes an in-flight action once the vehicle has longitudinally
// aligned with its new slot: the source slot is freed and both busy claims are lifted
func (controller *VehicleController) detectCompletion(vehicle *Vehicle) {
	if vehicle.PreviousSlot == nil || vehicle.CurrentSlot == nil || !vehicle.CurrentSlot.hasGeometry {
		return
	}
	if math.Abs(alongSlotOffset(vehicle, vehicle.CurrentSlot)) >= controller.completionThreshold {
		return
	}
	vehicle.PreviousSlot.Release()
	vehicle.PreviousSlot.busy = false
	vehicle.PreviousSlot = nil
	vehicle.CurrentSlot.busy = false
	controller.log.WithFields(logrus.Fields{
		"vehicle": vehicle.ID,
		"slot":    vehicle.CurrentSlot.ID,
	}).Debug("slot transition completed")
}

// syncSpeed issues the per-tick speed command keeping the vehicle aligned with its slot.
// Outside the tolerance band a proportional correction (clamped to ±maxAdjust around the
// slot's target speed, then to [0, maxSpeed]) is applied; inside it the slot speed is
// commanded directly.
func (controller *VehicleController) syncSpeed(vehicle *Vehicle) error {
	slot := vehicle.CurrentSlot
	if slot == nil || !slot.hasGeometry {
		return nil
	}
	delta := alongSlotOffset(vehicle, slot)
	if math.Abs(delta) > controller.syncTolerance {
		correction := clamp(controller.speedGain*delta, -controller.maxAdjust, controller.maxAdjust)
		target := clamp(slot.speed+correction, 0.0, vehicle.Type.MaxSpeed)
		return controller.sim.SetSpeed(vehicle.ID, target)
	}
	return controller.sim.SetSpeed(vehicle.ID, slot.speed)
}

// checkReroute advances the vehicle to the next route of its directional group when it
// approaches the end of the second-to-last edge of the current route. This prepares a
// lane for an upcoming exit without forcing an immediate lane change. The outermost
// lane (index 0) already serves the exit, so no switch happens there.
func (controller *VehicleController) checkReroute(vehicle *Vehicle, tel Telemetry) {
	group, ok := controller.routeGroups[vehicle.Route.ID]
	if !ok || group.IsTerminal(vehicle.Route) {
		return
	}
	if len(vehicle.Route.Edges) < 2 || tel.EdgeID != vehicle.Route.Edges[len(vehicle.Route.Edges)-2] {
		return
	}
	lane, ok := controller.lanes[tel.LaneID]
	if !ok {
		return
	}
	if lane.Length-tel.LanePosition > controller.rerouteDistance || tel.LaneIndex == 0 {
		return
	}
	next := group.Next(vehicle.Route)
	if next == nil {
		return
	}
	if err := controller.sim.SetRoute(vehicle.ID, next.ID); err != nil {
		controller.log.WithField("vehicle", vehicle.ID).WithError(err).Warn("route switch rejected")
		return
	}
	vehicle.Route = next
	controller.log.WithFields(logrus.Fields{
		"vehicle": vehicle.ID,
		"route":   next.ID,
	}).Info("vehicle switched to the next route of its group")
}

// PerformAction runs one slot action for the vehicle. Preconditions are the sole
// enforcement point of the busy protocol: the current slot must be bound, known and not
// already claimed. Failures leave all slot state untouched.
func (controller *VehicleController) PerformAction(vehicle *Vehicle, action SlotAction) error {
	if vehicle == nil {
		return ErrNotBound
	}
	current := vehicle.CurrentSlot
	if current == nil {
		return ErrNotBound
	}
	if current.fullLane == nil {
		return ErrUnknownFullLane
	}
	if current.busy {
		return ErrSlotBusy
	}

	switch action {
	case ACTION_STAY:
		return nil
	case ACTION_ADVANCE:
		return controller.shiftSlot(vehicle, current, +1)
	case ACTION_RETREAT:
		return controller.shiftSlot(vehicle, current, -1)
	case ACTION_CHANGE_LEFT:
		return controller.changeLane(vehicle, current, SIDE_LEFT)
	case ACTION_CHANGE_RIGHT:
		return controller.changeLane(vehicle, current, SIDE_RIGHT)
	}
	return errors.Errorf("unrecognized slot action %d", action)
}

// shiftSlot moves the vehicle's binding one slot forward or backward on the same
// FullLane. Both slots stay busy until completion detection observes the arrival.
func (controller *VehicleController) shiftSlot(vehicle *Vehicle, current *Slot, direction int) error {
	fl := current.fullLane
	idx := fl.slotIndex(current)
	if idx < 0 {
		return ErrUnknownFullLane
	}
	targetIdx := idx + direction
	if targetIdx < 0 || targetIdx >= len(fl.slots) {
		return ErrNoTargetSlot
	}
	target := fl.slots[targetIdx]
	if target.occupied {
		return ErrTargetOccupied
	}
	if target.busy {
		return ErrSlotBusy
	}

	current.busy = true
	target.busy = true
	vehicle.bindSlot(target)
	return nil
}

// changeLane resolves a lateral target slot on a registered neighbor FullLane and
// rebinds the vehicle to it. The search accepts the first geometrically valid candidate
// in lane/slot iteration order. Candidates need free immediate list neighbors so the
// pocket has clearance front and back.
func (controller *VehicleController) changeLane(vehicle *Vehicle, current *Slot, side SideType) error {
	edgeType := classifyEdge(vehicle.EdgeID)
	if edgeType == SEGMENT_ON_RAMP || edgeType == SEGMENT_INTERNAL {
		return ErrRestrictedEdge
	}
	if !current.hasGeometry {
		return ErrNoTargetSlot
	}

	target := controller.findLateralSlot(current, side)
	if target == nil {
		return ErrNoTargetSlot
	}

	lane := target.fullLane.laneAt(target.positionStart)
	if lane == nil {
		return ErrUnknownFullLane
	}
	// Command first, claim on success: a rejected command must leave slot state untouched
	if err := controller.sim.ChangeLane(vehicle.ID, lane.Index); err != nil {
		return errors.Wrapf(err, "lane change command for vehicle %s", vehicle.ID)
	}

	current.busy = true
	target.busy = true
	vehicle.bindSlot(target)
	return nil
}

func (controller *VehicleController) findLateralSlot(current *Slot, side SideType) *Slot {
	x := current.center[0]
	for _, neighborLane := range current.fullLane.neighborsAt(x, side) {
		for i, candidate := range neighborLane.slots {
			if candidate.occupied || candidate.busy || !candidate.hasGeometry {
				continue
			}
			if findDistance(candidate.center, current.center) > controller.lateralRadius {
				continue
			}
			if i > 0 && neighborLane.slots[i-1].occupied {
				continue
			}
			if i+1 < len(neighborLane.slots) && neighborLane.slots[i+1].occupied {
				continue
			}
			return candidate
		}
	}
	return nil
}
