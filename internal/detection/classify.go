package detection

// Trust score thresholds shared by the live-frame path and the offline
// path. These are the single source of truth; both paths must use them.
const (
	AuthenticThreshold = 70.0
	SuspectedThreshold = 40.0
)

type Classification struct {
	Status Status
	Tier   Tier
}

// Classify maps a trust score to its status and presentation tier.
// Total over all real inputs and monotonic in the score.
func Classify(score float64) Classification {
	switch {
	case score >= AuthenticThreshold:
		return Classification{Status: StatusAuthentic, Tier: TierSuccess}
	case score >= SuspectedThreshold:
		return Classification{Status: StatusSuspected, Tier: TierWarning}
	default:
		return Classification{Status: StatusDeepfake, Tier: TierDanger}
	}
}

// LabelForScore is the service-side label for a score. Inverse of
// StatusForLabel for the three known labels.
func LabelForScore(score float64) string {
	switch Classify(score).Status {
	case StatusAuthentic:
		return "Authentic"
	case StatusSuspected:
		return "Suspicious"
	default:
		return "Deepfake"
	}
}

// StatusForLabel maps a service label to a Status. Unknown or missing
// labels map to deepfake: an unrecognized label must never be treated
// as authentic.
func StatusForLabel(label string) Status {
	switch label {
	case "Authentic":
		return StatusAuthentic
	case "Suspicious":
		return StatusSuspected
	default:
		return StatusDeepfake
	}
}
