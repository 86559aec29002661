package model

import "time"

// TrackedItem is one persisted row of the tracking table. Name is the
// unique user-facing key; ID is the Grand Exchange item id resolved from
// it. Current* holds the most recently observed prices, Last* the
// baseline from the previous refresh.
type TrackedItem struct {
	Name        string
	ID          int
	CurrentHigh float64
	CurrentLow  float64
	LastHigh    float64
	LastLow     float64
}

// Quote is one entry of a price snapshot, keyed by item id. Snapshots
// are ephemeral: fetched, compared into TrackedItem, and discarded.
type Quote struct {
	High     float64
	Low      float64
	HighTime time.Time
	LowTime  time.Time
}

// ItemUpdate is the per-item result of a refresh cycle, carrying
// everything the presentation layer needs to render without
// recomputing. Stale means the latest snapshot had no data for the
// item; its prices then repeat the retained baseline and both deltas
// are zero.
type ItemUpdate struct {
	Name      string
	High      float64
	Low       float64
	DeltaHigh float64
	DeltaLow  float64
	Stale     bool
}

// CatalogEntry is one row of the remote item mapping.
type CatalogEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
