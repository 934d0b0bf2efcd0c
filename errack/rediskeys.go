package errack

import "fmt"

// LastRunKey returns the Redis key holding the last run status of a job.
// Uses hash tag {job} for Redis Cluster slot co-location.
func LastRunKey(job string) string {
	return fmt.Sprintf("ERRACK_{%s}_LASTRUN", job)
}
