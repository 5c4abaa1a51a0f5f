package db

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"eve-courier/internal/engine"
	"eve-courier/internal/graph"
)

// RouteRecord is one archived route computation.
type RouteRecord struct {
	ID        string
	CreatedAt time.Time
	Info      engine.RouteInfo
	Steps     []graph.RouteStep
}

// InsertRoute archives a computed route.
func (d *DB) InsertRoute(steps []graph.RouteStep, info *engine.RouteInfo) error {
	if info == nil {
		return errors.New("nil route info")
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return err
	}

	_, err = d.sql.Exec(`INSERT INTO route_history (
		id, created_at, profit_rate, risk, capital, transport_time, gross_profit, net_profit, steps_json
	) VALUES (?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().UTC().Format(time.RFC3339),
		info.ProfitRate, info.Risk, info.Capital, info.TransportTime,
		info.GrossProfit, info.NetProfit, string(stepsJSON),
	)
	return err
}

// RecentRoutes returns the latest archived routes, newest first.
func (d *DB) RecentRoutes(limit int) []RouteRecord {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.Query(`
		SELECT id, created_at, profit_rate, risk, capital, transport_time, gross_profit, net_profit, steps_json
		FROM route_history ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var records []RouteRecord
	for rows.Next() {
		var r RouteRecord
		var createdAt, stepsJSON string
		if err := rows.Scan(&r.ID, &createdAt,
			&r.Info.ProfitRate, &r.Info.Risk, &r.Info.Capital, &r.Info.TransportTime,
			&r.Info.GrossProfit, &r.Info.NetProfit, &stepsJSON); err != nil {
			continue
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if err := json.Unmarshal([]byte(stepsJSON), &r.Steps); err != nil {
			log.Printf("[DB] RecentRoutes unmarshal %s: %v", r.ID, err)
			continue
		}
		records = append(records, r)
	}
	return records
}
