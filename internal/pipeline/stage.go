package pipeline

// Stage is the step of the tick cycle the pipeline is in.
type Stage int32

const (
	StageIdle Stage = iota
	StageCapturing
	StageDetecting
	StageNormalizing
	StageFiltering
	StagePublished
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCapturing:
		return "capturing"
	case StageDetecting:
		return "detecting"
	case StageNormalizing:
		return "normalizing"
	case StageFiltering:
		return "filtering"
	case StagePublished:
		return "published"
	default:
		return "unknown"
	}
}
