// AngelaMos | 2026
// dto.go

package admin

// Inventory counts the rows an operator usually asks about first.
type Inventory struct {
	Users               int `db:"users"                json:"users"`
	ConfirmedUsers      int `db:"confirmed_users"      json:"confirmed_users"`
	Characters          int `db:"characters"           json:"characters"`
	AvailableCharacters int `db:"available_characters" json:"available_characters"`
	AccessKeys          int `db:"access_keys"          json:"access_keys"`
	RevokedKeys         int `db:"revoked_keys"         json:"revoked_keys"`
	ActiveSessions      int `db:"active_sessions"      json:"active_sessions"`
}

type SystemStatsResponse struct {
	Database  DatabaseStatus `json:"database"`
	Redis     RedisStatus    `json:"redis"`
	Storage   StorageStatus  `json:"storage"`
	Runtime   RuntimeStats   `json:"runtime"`
	Inventory *Inventory     `json:"inventory,omitempty"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type StorageStatus struct {
	Healthy bool `json:"healthy"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
