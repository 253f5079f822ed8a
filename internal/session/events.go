package session

import "time"

// Event types published to the sink.
const (
	EventExchange   = "exchange"
	EventCompaction = "compaction"
)

// Event is a live notification about session activity, consumed by the
// gateway's websocket feed.
type Event struct {
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	Turns        int       `json:"turns,omitempty"`
	TotalTokens  int       `json:"total_tokens,omitempty"`
	Messages     int       `json:"messages,omitempty"`
	TokensBefore int       `json:"tokens_before,omitempty"`
	TokensAfter  int       `json:"tokens_after,omitempty"`
	SnapshotID   string    `json:"snapshot_id,omitempty"`
	Failed       bool      `json:"failed,omitempty"`
}

// Sink receives session events. Implementations must not block for
// long: the sink is called inside the exchange path.
type Sink func(Event)
