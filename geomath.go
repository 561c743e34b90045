package slotline

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	pi180    = math.Pi / 180.0
	pi180Rev = 180.0 / math.Pi
)

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// radiansToDegrees r = deg * 180 / pi
func radiansToDegrees(d float64) float64 {
	return d * pi180Rev
}

// findDistance returns Euclidean distance between two points
func findDistance(p, q orb.Point) float64 {
	xdistance := p[0] - q[0]
	ydistance := p[1] - q[1]
	return math.Sqrt(xdistance*xdistance + ydistance*ydistance)
}

// getLength returns length for given line (assuming points of the line are Euclidean)
func getLength(line orb.LineString) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += findDistance(line[i-1], line[i])
	}
	return totalLength
}

// interpolate returns the point at the given arc-length distance along the line together
// with the tangent heading of the containing segment (degrees). When the distance overruns
// the total length of the line (off-by-epsilon after advancement is common) the last point
// and the heading of the final segment are returned instead.
func interpolate(line orb.LineString, distance float64) (orb.Point, float64) {
	accumulated := 0.0
	for i := 1; i < len(line); i++ {
		dx := line[i][0] - line[i-1][0]
		dy := line[i][1] - line[i-1][1]
		segmentLength := math.Hypot(dx, dy)
		if accumulated+segmentLength >= distance {
			fraction := (distance - accumulated) / segmentLength
			pt := orb.Point{
				line[i-1][0] + fraction*dx,
				line[i-1][1] + fraction*dy,
			}
			return pt, radiansToDegrees(math.Atan2(dy, dx))
		}
		accumulated += segmentLength
	}
	// fallback (last point of the line)
	last := len(line) - 1
	dx := line[last][0] - line[last-1][0]
	dy := line[last][1] - line[last-1][1]
	return line[last], radiansToDegrees(math.Atan2(dy, dx))
}

// nearestArc returns arc-length position of the closest point on given line to point p
func nearestArc(line orb.LineString, p orb.Point) float64 {
	bestArc := 0.0
	bestDist := math.Inf(1)
	accumulated := 0.0
	for i := 1; i < len(line); i++ {
		dx := line[i][0] - line[i-1][0]
		dy := line[i][1] - line[i-1][1]
		segmentLength := math.Hypot(dx, dy)
		if segmentLength == 0 {
			continue
		}
		t := ((p[0]-line[i-1][0])*dx + (p[1]-line[i-1][1])*dy) / (segmentLength * segmentLength)
		t = math.Max(0.0, math.Min(1.0, t))
		proj := orb.Point{line[i-1][0] + t*dx, line[i-1][1] + t*dy}
		dist := findDistance(p, proj)
		if dist < bestDist {
			bestDist = dist
			bestArc = accumulated + t*segmentLength
		}
		accumulated += segmentLength
	}
	return bestArc
}

// concatShapes glues lane shapes into one polyline, eliding duplicated junction points
func concatShapes(shapes []orb.LineString) orb.LineString {
	var combined orb.LineString
	for _, shape := range shapes {
		if len(shape) == 0 {
			continue
		}
		if len(combined) == 0 {
			combined = append(combined, shape...)
			continue
		}
		if combined[len(combined)-1] == shape[0] {
			combined = append(combined, shape[1:]...)
		} else {
			combined = append(combined, shape...)
		}
	}
	return combined
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
