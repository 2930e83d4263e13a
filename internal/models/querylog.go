package models

import "time"

// QueryRecord is one logged search.
type QueryRecord struct {
	ID        string        `json:"id"`
	Query     string        `json:"query"`
	Results   int           `json:"results"`
	Took      time.Duration `json:"took"`
	Source    string        `json:"source,omitempty"` // "api" or "cli"
	CreatedAt time.Time     `json:"createdAt"`
}

// QueryStat aggregates logged searches for one normalized query.
type QueryStat struct {
	Query    string    `json:"query"`
	Count    int64     `json:"count"`
	LastSeen time.Time `json:"lastSeen"`
	// ZeroHits counts searches for this query that returned nothing.
	ZeroHits int64 `json:"zeroHits"`
}
