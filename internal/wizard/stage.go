// Package wizard decides which of the four ordered mission stages a session
// may enter. Entering a stage whose prerequisites are missing is not an
// error; callers redirect to the earliest unsatisfied stage instead.
package wizard

import (
	"fmt"

	"bureau/pkg/domain"
)

// Stage is one of the four ordered wizard steps.
type Stage int

const (
	StageBriefing Stage = iota
	StageWorkshop
	StageEvidence
	StageComplete
)

var stageNames = [...]string{"briefing", "workshop", "evidence", "complete"}

func (s Stage) String() string {
	if s < StageBriefing || s > StageComplete {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage maps a stage name to its Stage value.
func ParseStage(name string) (Stage, bool) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), true
		}
	}
	return StageBriefing, false
}

// AllCovered reports whether every slide in the outline has at least one
// image with a matching slide number. An empty outline is trivially covered;
// Complete separately requires a non-empty outline. Recomputed on every
// call; inputs are small enough that no caching is warranted.
func AllCovered(outline domain.SlideOutline, images []domain.EvidenceImage) bool {
	covered := make(map[int]struct{}, len(images))
	for _, img := range images {
		covered[img.SlideNumber] = struct{}{}
	}
	for _, slide := range outline {
		if _, ok := covered[slide.SlideNumber]; !ok {
			return false
		}
	}
	return true
}

// satisfied reports whether the entry precondition for a stage holds.
// Briefing has no precondition.
func satisfied(stage Stage, state domain.SessionState) bool {
	switch stage {
	case StageBriefing:
		return true
	case StageWorkshop:
		return state.Topic != nil
	case StageEvidence:
		return state.Topic != nil && len(state.Outline) > 0
	case StageComplete:
		return state.Topic != nil && len(state.Outline) > 0 && AllCovered(state.Outline, state.Images)
	}
	return false
}

// NextValidStage returns the furthest stage whose entry precondition is
// satisfied, i.e. where the session currently belongs.
func NextValidStage(state domain.SessionState) Stage {
	next := StageBriefing
	for _, stage := range []Stage{StageWorkshop, StageEvidence, StageComplete} {
		if !satisfied(stage, state) {
			break
		}
		next = stage
	}
	return next
}

// Entry checks whether a session may enter the requested stage. When the
// prerequisites are missing it returns allowed=false and the earliest stage
// that still needs work. Re-entering any satisfied stage is always allowed;
// handlers rehydrate from the session store rather than regenerate.
func Entry(stage Stage, state domain.SessionState) (allowed bool, redirect Stage) {
	if satisfied(stage, state) {
		return true, stage
	}
	// Redirect to the earliest stage whose own precondition holds but whose
	// produced data is still missing.
	for s := StageBriefing; s < stage; s++ {
		if !satisfied(s+1, state) {
			return false, s
		}
	}
	return false, StageBriefing
}
