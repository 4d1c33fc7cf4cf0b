package history

import (
	"time"
)

// Listen rules
const (
	// MinimumTrackDuration is the shortest track that can count as listened (30 seconds)
	MinimumTrackDuration = 30 * time.Second

	// ListenPercentage is the share of a track that must be heard (50%)
	ListenPercentage = 0.5

	// MaxListenThreshold caps the required listening time (4 minutes)
	MaxListenThreshold = 4 * time.Minute
)

// Counts reports whether a play counts as listened:
// 1. The track must be at least 30 seconds long
// 2. Half of it, or 4 minutes, whichever comes first, must have been heard
func Counts(trackDuration, playedDuration time.Duration) bool {
	threshold := Threshold(trackDuration)
	if threshold < 0 {
		return false
	}
	return playedDuration >= threshold
}

// Threshold returns the listening time at which a track counts, or -1 if
// it can never count.
func Threshold(trackDuration time.Duration) time.Duration {
	if trackDuration < MinimumTrackDuration {
		return time.Duration(-1)
	}

	threshold := time.Duration(float64(trackDuration) * ListenPercentage)
	if threshold > MaxListenThreshold {
		threshold = MaxListenThreshold
	}

	return threshold
}
