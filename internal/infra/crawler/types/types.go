package types

import "time"

// ProbeResult 一次门户可达性探测的结果
type ProbeResult struct {
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code,omitempty"`
	Reachable  bool          `json:"reachable"`
	EntryFound bool          `json:"login_entry_found"`
	Latency    time.Duration `json:"-"`
	Error      string        `json:"error,omitempty"`
}

// Healthy 门户可达并且登录入口还在原来的位置
func (r *ProbeResult) Healthy() bool {
	return r.Reachable && r.EntryFound
}
