package esi

import (
	"encoding/json"
	"fmt"
	"io"
)

// CharacterLocation returns the solar system the character is currently in.
func (c *Client) CharacterLocation() (int64, error) {
	if c.token == "" {
		return 0, fmt.Errorf("no ESI token configured")
	}
	var loc struct {
		SolarSystemID int64 `json:"solar_system_id"`
		StationID     int64 `json:"station_id"`
	}
	url := fmt.Sprintf("%s/characters/%d/location/?datasource=tranquility", baseURL, c.characterID)

	resp, err := c.authedDo("GET", url, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("ESI %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return 0, err
	}
	// Docked characters report the station, which is the more precise anchor
	// for route planning.
	if loc.StationID != 0 {
		return loc.StationID, nil
	}
	return loc.SolarSystemID, nil
}

// SetWaypoints pushes the given locations to the in-game autopilot, replacing
// the existing route with the first and appending the rest.
func (c *Client) SetWaypoints(locationIDs []int64) error {
	for i, id := range locationIDs {
		url := fmt.Sprintf(
			"%s/ui/autopilot/waypoint/?datasource=tranquility&destination_id=%d&add_to_beginning=false&clear_other_waypoints=%t",
			baseURL, id, i == 0)
		resp, err := c.authedDo("POST", url, nil)
		if err != nil {
			return fmt.Errorf("waypoint %d: %w", id, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 204 {
			return fmt.Errorf("waypoint %d: ESI %d", id, resp.StatusCode)
		}
	}
	return nil
}

// OpenMarketWindow opens the in-game market window on the given item type.
func (c *Client) OpenMarketWindow(typeID int32) error {
	url := fmt.Sprintf("%s/ui/openwindow/marketdetails/?datasource=tranquility&type_id=%d", baseURL, typeID)
	resp, err := c.authedDo("POST", url, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != 204 {
		return fmt.Errorf("open market window: ESI %d", resp.StatusCode)
	}
	return nil
}
