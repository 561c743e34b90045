package slotline

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Lane is a single physical lane of one road segment. Lanes arrive fully resolved from
// the network loader and are immutable afterwards.
type Lane struct {
	ID        string
	Index     int // index of the lane within its segment (0 is the outermost lane)
	Speed     float64
	Length    float64
	Shape     orb.LineString
	SegmentID string
	NextLane  *Lane
	IsEntry   bool
}

func (lane *Lane) String() string {
	next := "-"
	if lane.NextLane != nil {
		next = lane.NextLane.ID
	}
	return fmt.Sprintf("Lane(id=%s, index=%d, speed=%f, length=%f, next=%s)", lane.ID, lane.Index, lane.Speed, lane.Length, next)
}

// Segment is one road edge grouping parallel lanes
type Segment struct {
	ID          string
	FromNode    string
	ToNode      string
	SegmentType SegmentType
	Lanes       []*Lane
}

func (segment *Segment) AddLane(lane *Lane) {
	lane.SegmentID = segment.ID
	segment.Lanes = append(segment.Lanes, lane)
}
