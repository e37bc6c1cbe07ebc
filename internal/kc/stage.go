package kc

// Stage identifies where in the growing season a resolution landed.
type Stage string

const (
	StageInitial     Stage = "initial"
	StageDevelopment Stage = "development"
	StageMid         Stage = "mid"
	StageLate        Stage = "late"

	// StageComplete marks queries past the end of the last stage. Kc holds
	// at the end-of-season value.
	StageComplete Stage = "complete"
)

// Index orders stages through the season, initial first. Complete sorts
// after every growing stage; unknown values return -1.
func (s Stage) Index() int {
	switch s {
	case StageInitial:
		return 0
	case StageDevelopment:
		return 1
	case StageMid:
		return 2
	case StageLate:
		return 3
	case StageComplete:
		return 4
	}
	return -1
}

// Growing reports whether the crop is still in the ground at this stage.
func (s Stage) Growing() bool {
	return s.Index() >= 0 && s != StageComplete
}
