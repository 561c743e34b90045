package slotline

// RemovedSlot reports a slot that exited its FullLane during a tick, so external
// bookkeeping (visualization, observation indices) can react.
type RemovedSlot struct {
	Slot     *Slot
	FullLane *FullLane
}

// SlotController advances every slot along its FullLane each tick, recycles slots that
// run off the end and regenerates fresh ones at the lane origin under a spacing guard.
type SlotController struct {
	generator *SlotGenerator
	fullLanes []*FullLane
	timeStep  float64
}

func NewSlotController(generator *SlotGenerator, fullLanes []*FullLane, timeStep float64) *SlotController {
	return &SlotController{
		generator: generator,
		fullLanes: fullLanes,
		timeStep:  timeStep,
	}
}

// Step advances all slots by speed*timeStep, drops the ones whose start crossed the end
// of their FullLane and re-evaluates the head of each lane for regeneration. Lanes are
// processed independently; within a lane the slot list stays sorted ascending by
// position_start and overlap-free. Calling Step with a zero time step changes no
// positions but still recomputes geometry.
func (controller *SlotController) Step() []RemovedSlot {
	removed := []RemovedSlot{}
	for _, fl := range controller.fullLanes {
		retained := make([]*Slot, 0, len(fl.slots))
		for _, slot := range fl.slots {
			slot.positionStart += slot.speed * controller.timeStep
			if slot.positionStart >= fl.totalLength {
				removed = append(removed, RemovedSlot{Slot: slot, FullLane: fl})
				continue
			}
			slot.refreshGeometry()
			retained = append(retained, slot)
		}

		// Regeneration guard: a fresh head slot fits only when the lane is empty or the
		// current head has moved at least one pitch away from the origin.
		pitch := controller.generator.slotLength + controller.generator.slotGap
		if head := lowestSlot(retained); head == nil || head.positionStart >= pitch {
			retained = append(retained, controller.generator.GenerateHeadSlot(fl))
		}

		fl.slots = retained
		fl.sortSlots()
	}
	return removed
}

// TimeStep returns the configured tick duration in seconds
func (controller *SlotController) TimeStep() float64 {
	return controller.timeStep
}

func lowestSlot(slots []*Slot) *Slot {
	var head *Slot
	for _, slot := range slots {
		if head == nil || slot.positionStart < head.positionStart {
			head = slot
		}
	}
	return head
}
