package live

import (
	"time"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

// DefaultLiveModel is the native-audio model calls connect to.
const DefaultLiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"

// Video frames are sampled at 5 Hz.
const defaultFrameInterval = 200 * time.Millisecond

const defaultEventBuffer = 64

// Config parameterizes one call session.
type Config struct {
	Model string
	Voice string
	Mode  Mode
	// Plan decides the call-time quota; see QuotaSeconds.
	Plan types.Plan

	SystemInstruction string

	// FrameInterval is the video sampling period. Zero means 5 Hz.
	FrameInterval time.Duration

	// EventBuffer sizes the Events channel. Zero means 64.
	EventBuffer int
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultLiveModel
	}
	if !c.Mode.Valid() {
		c.Mode = ModeAudio
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = defaultFrameInterval
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = defaultEventBuffer
	}
}

// QuotaSeconds returns the call-time allowance for a plan and mode. limited
// is false for plans with no cap, in which case seconds is meaningless.
func QuotaSeconds(plan types.Plan, mode Mode) (seconds int, limited bool) {
	if plan == types.PlanPlatinum {
		return 0, false
	}
	if mode == ModeVideo {
		if plan == types.PlanPremium {
			return 1800, true
		}
		return 60, true
	}
	// Audio mode.
	if plan == types.PlanPremium {
		return 0, false
	}
	return 600, true
}
