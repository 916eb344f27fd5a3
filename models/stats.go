package models

import "time"

type Stats struct {
	BuiltCount     int64     `json:"built_count"`
	DecodedCount   int64     `json:"decoded_count"`
	StoredCount    int64     `json:"stored_count"`
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`
}
