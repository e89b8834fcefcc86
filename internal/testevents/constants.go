package testevents

import "time"

// HTTP status code constants.
const (
	StatusOK = 200
)

// Generator defaults.
const (
	DefaultNumEvents  = 40
	DefaultNumPlayers = 120
	DefaultMaxRounds  = 6
	DefaultFieldSize  = 16
	DefaultTopN       = 50
	DefaultTimeout    = 30 * time.Second
	DefaultTolerance  = 1e-6
)

// Generated events start on this date and run weekly; consecutive pairs
// share a start date so ordering falls through to round count and id.
var seasonStart = time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)

const (
	eventSpacing = 7 * 24 * time.Hour
	// performanceStep quantizes round performances; players landing in the
	// same step tie.
	performanceStep = 0.25
	// noiseScale is the spread of one round's performance around skill.
	noiseScale = 0.8
	minField   = 2
)

// WorkerChannelMultiplier sizes task channels relative to the worker count.
const WorkerChannelMultiplier = 2
