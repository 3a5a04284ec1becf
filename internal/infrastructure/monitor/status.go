package monitor

import "time"

// Status is the last observed state of the storage medium.
type Status struct {
	Driver    string        `json:"driver"`
	Online    bool          `json:"online"`
	Error     string        `json:"error,omitempty"`
	LastCheck time.Time     `json:"last_check"`
	Bolt      *BoltCounters `json:"bolt,omitempty"`
}

// BoltCounters is a subset of the Bolt database statistics.
type BoltCounters struct {
	OpenTx       int `json:"open_tx"`
	ReadTx       int `json:"read_tx"`
	FreePages    int `json:"free_pages"`
	PendingPages int `json:"pending_pages"`
}
