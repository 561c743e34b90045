package slotline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// PrepareWKTLinestring returns WKT representation of LineString
func PrepareWKTLinestring(line orb.LineString) string {
	return wkt.MarshalString(line)
}

// PrepareWKTPoint returns WKT representation of Point
func PrepareWKTPoint(pt orb.Point) string {
	return wkt.MarshalString(pt)
}

// SnapshotGeoJSON renders the current lanes and slots as a GeoJSON feature collection
// for external visualization
func SnapshotGeoJSON(fullLanes []*FullLane) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, fl := range fullLanes {
		line := make([][]float64, len(fl.fullShape))
		for i, pt := range fl.fullShape {
			line[i] = []float64{pt[0], pt[1]}
		}
		laneFeature := geojson.NewLineStringFeature(line)
		laneFeature.SetProperty("id", fl.ID)
		laneFeature.SetProperty("kind", "full_lane")
		laneFeature.SetProperty("length", fl.totalLength)
		fc.AddFeature(laneFeature)

		for _, slot := range fl.slots {
			if !slot.hasGeometry {
				continue
			}
			slotFeature := geojson.NewPointFeature([]float64{slot.center[0], slot.center[1]})
			slotFeature.SetProperty("id", int(slot.ID))
			slotFeature.SetProperty("kind", "slot")
			slotFeature.SetProperty("lane", fl.ID)
			slotFeature.SetProperty("heading", slot.heading)
			slotFeature.SetProperty("occupied", slot.occupied)
			slotFeature.SetProperty("busy", slot.busy)
			fc.AddFeature(slotFeature)
		}
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal feature collection")
	}
	return b, nil
}

// ExportToCSV writes two semicolon-separated files next to fname: one with the lanes
// and one with the current slot states
func ExportToCSV(fullLanes []*FullLane, fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameLanes := fmt.Sprintf(fnameParts[0] + "_lanes.csv")
	fnameSlots := fmt.Sprintf(fnameParts[0] + "_slots.csv")

	if err := exportLanesToCSV(fullLanes, fnameLanes); err != nil {
		return errors.Wrap(err, "Can't export lanes")
	}
	if err := exportSlotsToCSV(fullLanes, fnameSlots); err != nil {
		return errors.Wrap(err, "Can't export slots")
	}
	return nil
}

func exportLanesToCSV(fullLanes []*FullLane, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "start_lane", "total_length", "lanes_num", "slots_num", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, fl := range fullLanes {
		err = writer.Write([]string{
			fl.ID,
			fl.StartLaneID(),
			fmt.Sprintf("%f", fl.totalLength),
			fmt.Sprintf("%d", len(fl.lanes)),
			fmt.Sprintf("%d", len(fl.slots)),
			PrepareWKTLinestring(fl.fullShape),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write lane")
		}
	}
	return nil
}

func exportSlotsToCSV(fullLanes []*FullLane, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "lane", "position_start", "position_end", "speed", "heading", "occupied", "busy", "vehicle", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, fl := range fullLanes {
		for _, slot := range fl.slots {
			err = writer.Write([]string{
				fmt.Sprintf("%d", slot.ID),
				fl.ID,
				fmt.Sprintf("%f", slot.positionStart),
				fmt.Sprintf("%f", slot.PositionEnd()),
				fmt.Sprintf("%f", slot.speed),
				fmt.Sprintf("%f", slot.heading),
				fmt.Sprintf("%t", slot.occupied),
				fmt.Sprintf("%t", slot.busy),
				slot.vehicleID,
				PrepareWKTPoint(slot.center),
			})
			if err != nil {
				return errors.Wrap(err, "Can't write slot")
			}
		}
	}
	return nil
}
