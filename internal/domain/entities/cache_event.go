package entities

import "time"

// CacheEventReason explains why a key was invalidated.
type CacheEventReason string

const (
	CacheEventRefreshed CacheEventReason = "refreshed"
	CacheEventDeleted   CacheEventReason = "deleted"
)

// CacheEvent is published when a cached recommendation changes so that
// other processes can drop their in-memory copies.
type CacheEvent struct {
	ID        string           `json:"id"`
	Key       string           `json:"key"`
	Reason    CacheEventReason `json:"reason"`
	Timestamp time.Time        `json:"timestamp"`
}
