// Package sde loads the static universe data the planner is built on:
// solar systems, stations, stargates, gate connections and the item catalog.
// Everything here is read-only for the process lifetime.
package sde

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"eve-courier/internal/logger"
)

// Group/type IDs in the map denormalize export.
const (
	typeIDSolarSystem = 5
	groupIDStation    = 15
	groupIDStargate   = 10
)

// Location is a navigable map object: an NPC station (tradeable, dockable)
// or a stargate (transit only).
type Location struct {
	ID        int64
	Name      string
	IsStation bool
	Security  float64
	Position  [3]float64
	SystemID  int32
	RegionID  int32
}

// SolarSystem groups locations and carries region membership.
type SolarSystem struct {
	ID       int32
	Name     string
	RegionID int32
	Position [3]float64
}

// ItemType is a market-tradeable item from the inventory catalog.
type ItemType struct {
	ID     int32
	Name   string
	Volume float64 // packaged volume in m³
}

// Data holds all parsed static data.
type Data struct {
	Locations map[int64]*Location
	Systems   map[int32]*SolarSystem
	Regions   map[int32]string // regionID -> name
	Types     map[int32]*ItemType
	Gates     [][2]int64 // stargate connection pairs
}

// Load reads the static data CSV exports from dataDir, restricted to the
// given region allowlist (nil or empty = all regions).
func Load(dataDir string, regions []int32) (*Data, error) {
	allowed := make(map[int32]bool, len(regions))
	for _, r := range regions {
		allowed[r] = true
	}

	data := &Data{
		Locations: make(map[int64]*Location),
		Systems:   make(map[int32]*SolarSystem),
		Regions:   make(map[int32]string),
		Types:     make(map[int32]*ItemType),
	}

	logger.Info("SDE", "Loading regions...")
	if err := data.loadRegions(filepath.Join(dataDir, "mapRegions.csv")); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading map data...")
	if err := data.loadMap(filepath.Join(dataDir, "mapDenormalize.csv"), allowed); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading item catalog...")
	if err := data.loadTypes(filepath.Join(dataDir, "invTypes.csv")); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading stargate connections...")
	if err := data.loadJumps(filepath.Join(dataDir, "mapJumps.csv")); err != nil {
		return nil, err
	}

	logger.Success("SDE", fmt.Sprintf("Loaded %d locations, %d systems, %d item types, %d gate links",
		len(data.Locations), len(data.Systems), len(data.Types), len(data.Gates)))
	return data, nil
}

// RegionOf resolves the region a location belongs to.
// The second return is false when the location is unknown.
func (d *Data) RegionOf(locationID int64) (int32, bool) {
	if loc, ok := d.Locations[locationID]; ok {
		return loc.RegionID, true
	}
	if sys, ok := d.Systems[int32(locationID)]; ok {
		return sys.RegionID, true
	}
	return 0, false
}

// SystemName returns the name of a solar system, or "" if unknown.
func (d *Data) SystemName(systemID int32) string {
	if sys, ok := d.Systems[systemID]; ok {
		return sys.Name
	}
	return ""
}

func (d *Data) loadRegions(path string) error {
	return readCSV(path, func(get func(string) string) {
		id, err := strconv.ParseInt(get("regionID"), 10, 32)
		if err != nil {
			logger.Warn("SDE", fmt.Sprintf("Skipping region row: bad regionID %q", get("regionID")))
			return
		}
		d.Regions[int32(id)] = get("regionName")
	})
}

func (d *Data) loadMap(path string, allowed map[int32]bool) error {
	return readCSV(path, func(get func(string) string) {
		regionID, err := strconv.ParseInt(get("regionID"), 10, 32)
		if err != nil {
			return // rows without a region (e.g. the universe root) are irrelevant
		}
		if len(allowed) > 0 && !allowed[int32(regionID)] {
			return
		}

		itemID, err1 := strconv.ParseInt(get("itemID"), 10, 64)
		typeID, err2 := strconv.ParseInt(get("typeID"), 10, 32)
		groupID, err3 := strconv.ParseInt(get("groupID"), 10, 32)
		if err1 != nil || err2 != nil || err3 != nil {
			logger.Warn("SDE", fmt.Sprintf("Skipping malformed map row itemID=%q", get("itemID")))
			return
		}

		x, _ := strconv.ParseFloat(get("x"), 64)
		y, _ := strconv.ParseFloat(get("y"), 64)
		z, _ := strconv.ParseFloat(get("z"), 64)

		switch {
		case typeID == typeIDSolarSystem:
			d.Systems[int32(itemID)] = &SolarSystem{
				ID:       int32(itemID),
				Name:     get("itemName"),
				RegionID: int32(regionID),
				Position: [3]float64{x, y, z},
			}
		case groupID == groupIDStation || groupID == groupIDStargate:
			systemID, err := strconv.ParseInt(get("solarSystemID"), 10, 32)
			if err != nil {
				logger.Warn("SDE", fmt.Sprintf("Skipping location %d: bad solarSystemID", itemID))
				return
			}
			security, _ := strconv.ParseFloat(get("security"), 64)
			d.Locations[itemID] = &Location{
				ID:        itemID,
				Name:      get("itemName"),
				IsStation: groupID == groupIDStation,
				Security:  security,
				Position:  [3]float64{x, y, z},
				SystemID:  int32(systemID),
				RegionID:  int32(regionID),
			}
		}
	})
}

func (d *Data) loadTypes(path string) error {
	return readCSV(path, func(get func(string) string) {
		id, err := strconv.ParseInt(get("typeID"), 10, 32)
		if err != nil {
			logger.Warn("SDE", fmt.Sprintf("Skipping item row: bad typeID %q", get("typeID")))
			return
		}
		volume, _ := strconv.ParseFloat(get("volume"), 64)
		d.Types[int32(id)] = &ItemType{
			ID:     int32(id),
			Name:   get("typeName"),
			Volume: volume,
		}
	})
}

func (d *Data) loadJumps(path string) error {
	return readCSV(path, func(get func(string) string) {
		from, err1 := strconv.ParseInt(get("stargateID"), 10, 64)
		to, err2 := strconv.ParseInt(get("destinationID"), 10, 64)
		if err1 != nil || err2 != nil {
			logger.Warn("SDE", "Skipping malformed stargate connection row")
			return
		}
		d.Gates = append(d.Gates, [2]int64{from, to})
	})
}

// readCSV streams a CSV file, calling row for each record with a
// header-keyed field accessor. Short rows are skipped.
func readCSV(path string, row func(get func(string) string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("SDE", fmt.Sprintf("Skipping unreadable row in %s: %v", filepath.Base(path), err))
			continue
		}
		row(func(field string) string {
			i, ok := index[field]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		})
	}
	return nil
}
