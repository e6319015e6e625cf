package mysql

import "time"

// SetClock pins the timestamps the repository writes.
func SetClock(r *Repo, now func() time.Time) { r.now = now }
