package slotline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/samber/lo"
)

// NeighborLane registers a laterally adjacent FullLane together with the x-interval in
// which a lane change towards it is geometrically valid.
type NeighborLane struct {
	XMin     float64
	XMax     float64
	FullLane *FullLane
	Side     SideType
}

// FullLane is a logically continuous lane chaining physically connected lane segments.
// It owns the combined polyline geometry and the ordered list of slots moving along it.
type FullLane struct {
	ID          string
	lanes       []*Lane
	fullShape   orb.LineString
	totalLength float64
	neighbors   []NeighborLane
	slots       []*Slot
}

// NewFullLane builds a FullLane from its ordered constituent lanes. Duplicated junction
// points between consecutive lane shapes are elided from the combined geometry.
func NewFullLane(id string, lanes []*Lane) *FullLane {
	shape := concatShapes(lo.Map(lanes, func(lane *Lane, _ int) orb.LineString {
		return lane.Shape
	}))
	return &FullLane{
		ID:          id,
		lanes:       lanes,
		fullShape:   shape,
		totalLength: getLength(shape),
	}
}

func (fl *FullLane) String() string {
	laneIDs := lo.Map(fl.lanes, func(lane *Lane, _ int) string { return lane.ID })
	return fmt.Sprintf("FullLane(id=%s, length=%f, lanes=[%s])", fl.ID, fl.totalLength, strings.Join(laneIDs, ","))
}

// StartLaneID returns the identifier of the first constituent lane. Merge mappings are
// keyed by it.
func (fl *FullLane) StartLaneID() string {
	if len(fl.lanes) == 0 {
		return ""
	}
	return fl.lanes[0].ID
}

func (fl *FullLane) Lanes() []*Lane {
	return fl.lanes
}

func (fl *FullLane) Shape() orb.LineString {
	return fl.fullShape
}

func (fl *FullLane) TotalLength() float64 {
	return fl.totalLength
}

func (fl *FullLane) Slots() []*Slot {
	return fl.slots
}

// RegisterNeighbor records that the other FullLane runs laterally adjacent within
// [xMin, xMax] on the given side
func (fl *FullLane) RegisterNeighbor(xMin, xMax float64, other *FullLane, side SideType) {
	fl.neighbors = append(fl.neighbors, NeighborLane{XMin: xMin, XMax: xMax, FullLane: other, Side: side})
}

// neighborsAt returns the neighbor FullLanes on the given side whose x-interval contains x
func (fl *FullLane) neighborsAt(x float64, side SideType) []*FullLane {
	candidates := make([]*FullLane, 0, len(fl.neighbors))
	for _, neighbor := range fl.neighbors {
		if neighbor.Side == side && neighbor.XMin <= x && x <= neighbor.XMax {
			candidates = append(candidates, neighbor.FullLane)
		}
	}
	return candidates
}

// laneAt resolves the constituent lane containing the given arc-length position. The
// last lane absorbs overruns.
func (fl *FullLane) laneAt(position float64) *Lane {
	if len(fl.lanes) == 0 {
		return nil
	}
	accumulated := 0.0
	for _, lane := range fl.lanes {
		accumulated += getLength(lane.Shape)
		if position < accumulated {
			return lane
		}
	}
	return fl.lanes[len(fl.lanes)-1]
}

// laneOffset returns the arc-length at which the given constituent lane begins
func (fl *FullLane) laneOffset(lane *Lane) float64 {
	accumulated := 0.0
	for _, candidate := range fl.lanes {
		if candidate == lane {
			return accumulated
		}
		accumulated += getLength(candidate.Shape)
	}
	return accumulated
}

// sortSlots restores ascending position_start order after a mutation
func (fl *FullLane) sortSlots() {
	sort.SliceStable(fl.slots, func(i, j int) bool {
		return fl.slots[i].positionStart < fl.slots[j].positionStart
	})
}

// slotIndex returns the position of slot in the ordered slot list or -1
func (fl *FullLane) slotIndex(slot *Slot) int {
	for i, s := range fl.slots {
		if s == slot {
			return i
		}
	}
	return -1
}
