// Package models declares the gorm-mapped rows persisted by
// internal/store/repository, adapted from the teacher's backend/models
// (LinkStat) — per-node cumulative counters there, per-node-per-run
// aggregate TSCH stats here.
package models

import "time"

// RunStatSnapshot is one tally interval's aggregate counters for one node
// within one simulation run, persisted by internal/stats's tally service
// (spec.md §8's aggregate_stats() surface, made durable driver-side).
type RunStatSnapshot struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID             string    `gorm:"index;not null" json:"run_id"`
	NodeID            int       `gorm:"index;not null" json:"node_id"`
	ASN               uint64    `gorm:"not null" json:"asn"`
	AppNumEndpointRx  int       `json:"app_num_endpoint_rx"`
	MacTxUnicast      int       `json:"mac_tx_unicast"`
	MacAcked          int       `json:"mac_acked"`
	MacRxCollision    int       `json:"mac_rx_collision"`
	AppNumQueueDrops  int       `json:"app_num_queue_drops"`
	AppNumTxLimitDrop int       `json:"app_num_tx_limit_drops"`
	AppNumOtherDrops  int       `json:"app_num_other_drops"`
	RoutingDrops      int       `json:"routing_drops"`
	SchedulingDrops   int       `json:"scheduling_drops"`
	RecordedAt        time.Time `gorm:"autoCreateTime" json:"recorded_at"`
}

// TableName overrides gorm's default pluralized name, matching the
// teacher's explicit TableName overrides.
func (RunStatSnapshot) TableName() string { return "run_stat_snapshots" }
