package volume

import "time"

// Bucket keys are truncated UTC timestamps. Rollover is lazy: totals are
// read and written under the bucket derived from the caller's timestamp, so
// a new day or month simply lands in a fresh bucket with no background job.

// DayBucket returns the day bucket key for a timestamp.
func DayBucket(at time.Time) string {
	return at.UTC().Format("2006-01-02")
}

// MonthBucket returns the month bucket key for a timestamp.
func MonthBucket(at time.Time) string {
	return at.UTC().Format("2006-01")
}
