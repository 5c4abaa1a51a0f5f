package db

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"time"

	"eve-courier/internal/logger"
)

// LoadDistances returns the cached all-pairs table for a ship profile.
// Any read or decode failure is treated as a cache miss.
func (d *DB) LoadDistances(profileHash string) (map[int64]map[int64]float64, bool) {
	var blob []byte
	err := d.sql.QueryRow(
		"SELECT distances FROM distance_cache WHERE profile_hash = ?", profileHash,
	).Scan(&blob)
	if err != nil {
		return nil, false
	}

	var dist map[int64]map[int64]float64
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&dist); err != nil {
		log.Printf("[DB] distance cache for %s is corrupt, recomputing: %v", profileHash, err)
		return nil, false
	}
	return dist, true
}

// SaveDistances stores the all-pairs table under the profile hash, replacing
// any previous entry. Tables for other (stale) profiles are dropped: only
// one ship profile is active per process.
func (d *DB) SaveDistances(profileHash string, dist map[int64]map[int64]float64) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dist); err != nil {
		logger.Error("DB", fmt.Sprintf("Encode distance table: %v", err))
		return
	}

	if _, err := d.sql.Exec("DELETE FROM distance_cache WHERE profile_hash != ?", profileHash); err != nil {
		log.Printf("[DB] prune stale distance caches: %v", err)
	}
	_, err := d.sql.Exec(
		"INSERT OR REPLACE INTO distance_cache (profile_hash, distances, created_at) VALUES (?, ?, ?)",
		profileHash, buf.Bytes(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Persist distance table: %v", err))
	}
}
