package slotline

// Route is an ordered edge-id sequence a vehicle travels. Consumed read-only.
type Route struct {
	ID    string
	Edges []string
}

// EntryEdge returns the first edge of the route, or "" for an empty route
func (route *Route) EntryEdge() string {
	if len(route.Edges) == 0 {
		return ""
	}
	return route.Edges[0]
}

// RouteGroup is a set of routes sharing an entry point and direction, ordered by which
// exit they serve. The last route is the terminal ("main") one; the others serve earlier
// off-ramps. A vehicle is stepped through the group to prepare upcoming exits.
type RouteGroup struct {
	ID     string
	Routes []*Route
}

// Next returns the route following current within the group, or nil when current is
// terminal or not part of the group.
func (group *RouteGroup) Next(current *Route) *Route {
	for i, route := range group.Routes {
		if route.ID == current.ID && i+1 < len(group.Routes) {
			return group.Routes[i+1]
		}
	}
	return nil
}

// IsTerminal reports whether the route is the group's last one
func (group *RouteGroup) IsTerminal(route *Route) bool {
	return len(group.Routes) != 0 && group.Routes[len(group.Routes)-1].ID == route.ID
}
