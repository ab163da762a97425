package config

import "time"

// DefaultGCConfig returns the active expiration defaults
func DefaultGCConfig() GCConfig {
	return GCConfig{
		Enabled:         true,
		Interval:        100 * time.Millisecond,
		SamplesPerCheck: 20,
		MatchThreshold:  0.25,
		MaxRounds:       4,
		MutationTrigger: 1000,
	}
}
