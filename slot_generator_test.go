package slotline

import "testing"

func TestGenerateInitialLayout(t *testing.T) {
	fl := singleLaneFixture("e1")
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(0))
	slots := generator.GenerateForFullLane(fl)

	if len(slots) != 9 {
		t.Errorf("A 100 m lane must hold 9 slots at 8+3 pitch, but got %d", len(slots))
	}
	for i, slot := range slots {
		correctStart := float64(i) * 11.0
		if slot.positionStart != correctStart {
			t.Errorf("Slot %d must start at %f, but got %f", i, correctStart, slot.positionStart)
		}
		if slot.occupied {
			t.Errorf("Freshly generated slot %d must not be occupied", i)
		}
		if !slot.hasGeometry {
			t.Errorf("Slot %d must have its geometry computed", i)
		}
		if i > 0 && slot.positionStart < slots[i-1].PositionEnd() {
			t.Errorf("Slots %d and %d overlap: %f < %f", i-1, i, slot.positionStart, slots[i-1].PositionEnd())
		}
	}
}

func TestGenerateAssignsUniqueIDs(t *testing.T) {
	seq := NewSequence(0)
	generator := NewSlotGenerator(8.0, 3.0, seq)
	first := generator.GenerateForFullLane(singleLaneFixture("e1"))
	second := generator.GenerateForFullLane(singleLaneFixture("e2"))

	seen := map[SlotID]bool{}
	for _, slot := range append(first, second...) {
		if seen[slot.ID] {
			t.Errorf("Slot id %d assigned twice", slot.ID)
		}
		seen[slot.ID] = true
	}
}

func TestGenerateHeadSlot(t *testing.T) {
	fl := singleLaneFixture("e1")
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(100))
	slot := generator.GenerateHeadSlot(fl)

	if slot.positionStart != 0.0 {
		t.Errorf("Head slot must start at the lane origin, but starts at %f", slot.positionStart)
	}
	if slot.speed != 10.0 {
		t.Errorf("Head slot must carry the lane speed 10, but got %f", slot.speed)
	}
	if slot.ID != SlotID(100) {
		t.Errorf("Head slot id must come from the sequence (100), but got %d", slot.ID)
	}
	center, ok := slot.Center()
	if !ok {
		t.Errorf("Head slot geometry must be computed")
	}
	if center[0] != 4.0 || center[1] != 0.0 {
		t.Errorf("Head slot center must be (4, 0), but got %v", center)
	}
}

func TestGenerateSkipsTooShortLane(t *testing.T) {
	lane := straightLane("short_0", 0, "short", 0, 0, 5, 10)
	fl := NewFullLane("full_short", []*Lane{lane})
	generator := NewSlotGenerator(8.0, 3.0, NewSequence(0))
	slots := generator.GenerateForFullLane(fl)
	if len(slots) != 0 {
		t.Errorf("A 5 m lane cannot hold an 8 m slot, but got %d slots", len(slots))
	}
}
