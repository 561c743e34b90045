package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/slotline/slotline"
)

var (
	ticks       = flag.Int("ticks", 1000, "Number of simulation ticks to run")
	configPath  = flag.String("config", "", "Path to YAML configuration (optional, defaults apply)")
	serveAddr   = flag.String("serve", "", "Address for the websocket tick stream, e.g. ':8080' (disabled when empty)")
	csvOut      = flag.String("csv", "", "Filename for a final CSV snapshot, e.g. 'snapshot.csv' (disabled when empty)")
	geojsonOut  = flag.String("geojson", "", "Filename for a final GeoJSON snapshot (disabled when empty)")
	seed        = flag.Int64("seed", 42, "Random seed for the demo action policy")
	spawnEvery  = flag.Int("spawn-every", 30, "Spawn a vehicle every N ticks")
	randomMoves = flag.Bool("random-actions", true, "Issue random slot actions for controllable slots")
)

func main() {
	flag.Parse()
	log := logrus.New()

	cfg := slotline.DefaultConfig()
	if *configPath != "" {
		loaded, err := slotline.LoadConfig(*configPath)
		if err != nil {
			log.WithError(err).Fatal("configuration failed")
		}
		cfg = loaded
	}
	cfg.RampMap = map[string]string{"on_ramp1": "e1_0"}

	fullLanes, lanes, rampLane, routes := buildDemoNetwork()
	sim := slotline.NewMemorySimulator(fullLanes, lanes, cfg.TimeStep)
	groups := map[string]*slotline.RouteGroup{}

	// The ramp is a FullLane only for the simulator's sake; slots live on the mainline
	mainLanes := fullLanes[:2]
	engine := slotline.NewEngine(cfg, mainLanes, lanes, groups, sim, slotline.WithLogger(log))

	if *serveAddr != "" {
		stream := slotline.NewStreamServer(log)
		engine.OnTick(stream.Broadcast)
		http.Handle("/ws", stream)
		go func() {
			log.WithField("addr", *serveAddr).Info("tick stream listening")
			if err := http.ListenAndServe(*serveAddr, nil); err != nil {
				log.WithError(err).Fatal("stream server failed")
			}
		}()
	}

	rng := rand.New(rand.NewSource(*seed))
	vehicleGen := slotline.NewVehicleGenerator(sim, &slotline.VehicleType{ID: "car", Length: 5.0, MaxSpeed: 33.3}, slotline.NewSequence(0), log)

	for tick := 0; tick < *ticks; tick++ {
		if *randomMoves {
			for _, row := range engine.Observations() {
				if !row.Controllable {
					continue
				}
				// Rejected actions are expected noise in the random policy
				_ = engine.ExecuteSlotAction(row.Index, rng.Intn(5))
			}
		}

		sim.Step()
		engine.Step()

		if tick%*spawnEvery == 0 {
			spawnVehicle(engine, vehicleGen, mainLanes, rampLane, routes, rng, log)
		}
	}

	fmt.Printf("Done: %d ticks, %d slots, %d vehicles managed\n", engine.Tick(), len(engine.Slots()), len(engine.Vehicles()))

	if *csvOut != "" {
		if err := slotline.ExportToCSV(fullLanes, *csvOut); err != nil {
			log.WithError(err).Error("CSV export failed")
		}
	}
	if *geojsonOut != "" {
		b, err := slotline.SnapshotGeoJSON(fullLanes)
		if err != nil {
			log.WithError(err).Error("GeoJSON export failed")
		} else if err := os.WriteFile(*geojsonOut, b, 0644); err != nil {
			log.WithError(err).Error("GeoJSON write failed")
		}
	}
}

// spawnVehicle alternates between mainline vehicles dropped onto a free head slot and
// ramp vehicles left for the merge controller to bind
func spawnVehicle(engine *slotline.Engine, gen *slotline.VehicleGenerator, fullLanes []*slotline.FullLane, rampLane *slotline.Lane, routes map[string]*slotline.Route, rng *rand.Rand, log logrus.FieldLogger) {
	if rng.Intn(3) == 0 {
		vehicle, err := gen.Generate(nil, routes["r_ramp"], rampLane)
		if err != nil {
			log.WithError(err).Warn("ramp spawn failed")
			return
		}
		engine.AddVehicle(vehicle)
		return
	}

	fl := fullLanes[rng.Intn(len(fullLanes))]
	slots := fl.Slots()
	if len(slots) == 0 || slots[0].Occupied() {
		return
	}
	vehicle, err := gen.Generate(slots[0], routes["r_main"], nil)
	if err != nil {
		log.WithError(err).Warn("mainline spawn failed")
		return
	}
	engine.AddVehicle(vehicle)
}

// buildDemoNetwork assembles a synthetic straight two-lane mainline with an on-ramp
// feeding its outer lane
func buildDemoNetwork() ([]*slotline.FullLane, map[string]*slotline.Lane, *slotline.Lane, map[string]*slotline.Route) {
	straight := func(y float64, xFrom, xTo float64) orb.LineString {
		return orb.LineString{{xFrom, y}, {xTo, y}}
	}

	lanes := map[string]*slotline.Lane{}
	makeLane := func(id string, index int, shape orb.LineString, segmentID string) *slotline.Lane {
		lane := &slotline.Lane{
			ID:        id,
			Index:     index,
			Speed:     13.9,
			Length:    getShapeLength(shape),
			Shape:     shape,
			SegmentID: segmentID,
		}
		lanes[id] = lane
		return lane
	}

	outer := []*slotline.Lane{
		makeLane("e1_0", 0, straight(0, 0, 100), "e1"),
		makeLane("e2_0", 0, straight(0, 100, 200), "e2"),
		makeLane("e3_0", 0, straight(0, 200, 300), "e3"),
	}
	inner := []*slotline.Lane{
		makeLane("e1_1", 1, straight(3.5, 0, 100), "e1"),
		makeLane("e2_1", 1, straight(3.5, 100, 200), "e2"),
		makeLane("e3_1", 1, straight(3.5, 200, 300), "e3"),
	}
	rampLane := makeLane("on_ramp1_0", 0, orb.LineString{{60, -20}, {95, -2}, {100, 0}}, "on_ramp1")

	mainOuter := slotline.NewFullLane("main_0", outer)
	mainInner := slotline.NewFullLane("main_1", inner)
	ramp := slotline.NewFullLane("ramp_0", []*slotline.Lane{rampLane})

	mainOuter.RegisterNeighbor(0, 300, mainInner, slotline.SIDE_LEFT)
	mainInner.RegisterNeighbor(0, 300, mainOuter, slotline.SIDE_RIGHT)

	routes := map[string]*slotline.Route{
		"r_main": {ID: "r_main", Edges: []string{"e1", "e2", "e3"}},
		"r_ramp": {ID: "r_ramp", Edges: []string{"on_ramp1", "e2", "e3"}},
	}

	return []*slotline.FullLane{mainOuter, mainInner, ramp}, lanes, rampLane, routes
}

func getShapeLength(shape orb.LineString) float64 {
	total := 0.0
	for i := 1; i < len(shape); i++ {
		total += math.Hypot(shape[i][0]-shape[i-1][0], shape[i][1]-shape[i-1][1])
	}
	return total
}
