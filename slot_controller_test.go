package slotline

import "testing"

func TestStepAdvancesAndRetains(t *testing.T) {
	fl := singleLaneFixture("e1")
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(0))
	slot := generator.GenerateHeadSlot(fl)
	slot.positionStart = 95.0
	fl.slots = []*Slot{slot}

	controller := NewSlotController(generator, []*FullLane{fl}, 0.1)
	removed := controller.Step()

	if len(removed) != 0 {
		t.Errorf("No slot must be removed at position 96, but got %d removals", len(removed))
	}
	if slot.positionStart != 96.0 {
		t.Errorf("Slot must advance to 96, but got %f", slot.positionStart)
	}
	if fl.slotIndex(slot) < 0 {
		t.Errorf("Advanced slot must survive in the lane's slot list")
	}
}

func TestStepRemovesAndRegenerates(t *testing.T) {
	fl := singleLaneFixture("e1")
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(0))
	slot := generator.GenerateHeadSlot(fl)
	slot.positionStart = 99.5
	fl.slots = []*Slot{slot}

	controller := NewSlotController(generator, []*FullLane{fl}, 0.1)
	removed := controller.Step()

	if len(removed) != 1 {
		t.Errorf("Exactly one slot must be removed at position 100.5, but got %d", len(removed))
	}
	if len(removed) == 1 && (removed[0].Slot != slot || removed[0].FullLane != fl) {
		t.Errorf("Removal report must carry the removed slot and its lane")
	}
	if len(fl.slots) != 1 {
		t.Errorf("Exactly one regenerated head slot must remain, but got %d", len(fl.slots))
	}
	if len(fl.slots) == 1 && fl.slots[0].positionStart != 0.0 {
		t.Errorf("Regenerated slot must start at 0, but starts at %f", fl.slots[0].positionStart)
	}
}

func TestRegenerationGuardBlocksOverlap(t *testing.T) {
	fl := singleLaneFixture("e1")
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(0))
	generator.GenerateForFullLane(fl)

	// After one tick the head sits at 1.0 < 11.0, so no new head slot may appear
	controller := NewSlotController(generator, []*FullLane{fl}, 0.1)
	before := len(fl.slots)
	controller.Step()

	// The tail slot at 88 advanced to 89 and stays; nothing removed, nothing added
	if len(fl.slots) != before {
		t.Errorf("Slot count must stay %d under the spacing guard, but got %d", before, len(fl.slots))
	}
	head := fl.slots[0]
	if head.positionStart != 1.0 {
		t.Errorf("Head must sit at 1.0, but got %f", head.positionStart)
	}
}

func TestRegenerationGuardAllowsAtPitch(t *testing.T) {
	fl := singleLaneFixture("e1")
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(0))
	slot := generator.GenerateHeadSlot(fl)
	slot.positionStart = 10.9
	fl.slots = []*Slot{slot}

	controller := NewSlotController(generator, []*FullLane{fl}, 0.1)
	controller.Step()

	// Head moved to 11.9 >= pitch 11, so a fresh slot fits at the origin
	if len(fl.slots) != 2 {
		t.Errorf("Expected head regeneration, got %d slots", len(fl.slots))
	}
	newHead := fl.slots[0]
	if newHead.positionStart != 0.0 {
		t.Errorf("New head must start at 0, but got %f", newHead.positionStart)
	}
	if newHead.PositionEnd() > fl.slots[1].positionStart {
		t.Errorf("New head end %f must not overlap old head start %f", newHead.PositionEnd(), fl.slots[1].positionStart)
	}
}

func TestStepKeepsSortedWithoutOverlap(t *testing.T) {
	outer, inner, _ := twoLaneFixture()
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(0))
	generator.GenerateForAll([]*FullLane{outer, inner})

	controller := NewSlotController(generator, []*FullLane{outer, inner}, 0.1)
	for tick := 0; tick < 200; tick++ {
		controller.Step()
		for _, fl := range []*FullLane{outer, inner} {
			for i := 1; i < len(fl.slots); i++ {
				if fl.slots[i].positionStart < fl.slots[i-1].positionStart {
					t.Fatalf("Tick %d: lane %s slots out of order at %d", tick, fl.ID, i)
				}
				if fl.slots[i].positionStart < fl.slots[i-1].PositionEnd() {
					t.Fatalf("Tick %d: lane %s slots %d and %d overlap", tick, fl.ID, i-1, i)
				}
			}
		}
	}
}

func TestZeroTimeStepChangesNothing(t *testing.T) {
	fl := singleLaneFixture("e1")
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(0))
	generator.GenerateForFullLane(fl)

	positions := make([]float64, len(fl.slots))
	for i, slot := range fl.slots {
		positions[i] = slot.positionStart
	}

	controller := NewSlotController(generator, []*FullLane{fl}, 0.0)
	removed := controller.Step()

	if len(removed) != 0 {
		t.Errorf("Zero time step must remove nothing, but removed %d", len(removed))
	}
	if len(fl.slots) != len(positions) {
		t.Errorf("Zero time step must not change the slot count: %d != %d", len(fl.slots), len(positions))
	}
	for i, slot := range fl.slots {
		if slot.positionStart != positions[i] {
			t.Errorf("Slot %d moved from %f to %f on a zero time step", i, positions[i], slot.positionStart)
		}
		if !slot.hasGeometry {
			t.Errorf("Slot %d geometry must still be computed", i)
		}
	}
}
