package models

// CPUStat is a snapshot of the aggregate CPU tick counters from /proc/stat.
// Active is Total minus the idle and iowait ticks.
type CPUStat struct {
	Total  int64
	Active int64
}
