package slotline

import "strings"

type SegmentType uint16

const (
	SEGMENT_STANDARD = SegmentType(iota + 1)
	SEGMENT_ON_RAMP
	SEGMENT_OFF_RAMP
	SEGMENT_INTERNAL
)

func (iotaIdx SegmentType) String() string {
	return [...]string{"standard", "on_ramp", "off_ramp", "internal"}[iotaIdx-1]
}

// classifyEdge derives the segment type from an edge identifier. Edges generated by the
// simulator for junction internals start with ':'; ramps and exits are recognized by
// naming convention.
func classifyEdge(edgeID string) SegmentType {
	lowered := strings.ToLower(edgeID)
	switch {
	case strings.HasPrefix(edgeID, ":"):
		return SEGMENT_INTERNAL
	case strings.Contains(lowered, "ramp"):
		return SEGMENT_ON_RAMP
	case strings.Contains(lowered, "exit"):
		return SEGMENT_OFF_RAMP
	default:
		return SEGMENT_STANDARD
	}
}
