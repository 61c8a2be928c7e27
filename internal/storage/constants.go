package storage

const (
	defaultKeyPrefix = "fxadvisor"
	quoteKeyPart     = "rate"
	leaderLockPart   = "leader_lock"
)
