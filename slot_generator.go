package slotline

// SlotGenerator lays out slots on FullLanes. All slot identifiers come from the injected
// sequence so they stay unique across initial generation and head regeneration.
type SlotGenerator struct {
	slotLength float64
	slotGap    float64
	seq        *Sequence
}

func NewSlotGenerator(slotLength, slotGap float64, seq *Sequence) *SlotGenerator {
	return &SlotGenerator{
		slotLength: slotLength,
		slotGap:    slotGap,
		seq:        seq,
	}
}

// GenerateForFullLane creates the initial evenly spaced slot layout on the lane and
// binds it. Slots are placed one pitch (length + gap) apart starting at the lane origin,
// so the resulting list is ascending by construction.
func (generator *SlotGenerator) GenerateForFullLane(fl *FullLane) []*Slot {
	slots := []*Slot{}
	speed := 0.0
	if len(fl.lanes) != 0 {
		speed = fl.lanes[0].Speed
	}
	position := 0.0
	for position+generator.slotLength <= fl.totalLength {
		slot := &Slot{
			ID:            SlotID(generator.seq.Next()),
			fullLane:      fl,
			positionStart: position,
			length:        generator.slotLength,
			gapToPrevious: generator.slotGap,
			speed:         speed,
		}
		slot.refreshGeometry()
		slots = append(slots, slot)
		position += generator.slotLength + generator.slotGap
	}
	fl.slots = slots
	fl.sortSlots()
	return slots
}

// GenerateForAll lays out slots on every FullLane and returns the combined list
func (generator *SlotGenerator) GenerateForAll(fullLanes []*FullLane) []*Slot {
	all := []*Slot{}
	for _, fl := range fullLanes {
		all = append(all, generator.GenerateForFullLane(fl)...)
	}
	return all
}

// GenerateHeadSlot synthesizes a single replacement slot at the lane origin. The caller
// is responsible for the spacing guard and for inserting it into the lane's slot list.
func (generator *SlotGenerator) GenerateHeadSlot(fl *FullLane) *Slot {
	speed := 0.0
	if len(fl.lanes) != 0 {
		speed = fl.lanes[0].Speed
	}
	slot := &Slot{
		ID:            SlotID(generator.seq.Next()),
		fullLane:      fl,
		positionStart: 0.0,
		length:        generator.slotLength,
		gapToPrevious: generator.slotGap,
		speed:         speed,
	}
	slot.refreshGeometry()
	return slot
}
