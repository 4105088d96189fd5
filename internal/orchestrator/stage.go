package orchestrator

// Stage is the coarse session phase driving which turn types are eligible.
type Stage string

const (
	StageOpening Stage = "opening"
	StageMain    Stage = "main"
	StageClosing Stage = "closing"
)

// MaxQuestions derives the session question budget: one question slot per
// two minutes of duration, rounded up.
func MaxQuestions(totalMinutes int) int {
	if totalMinutes <= 0 {
		return 0
	}
	return (totalMinutes + 1) / 2
}

// ClassifyStage maps session progress to a stage. Pure; this is the single
// source of truth for stage and must not be duplicated elsewhere.
func ClassifyStage(questionCount, maxQuestions int, elapsedMinutes, totalMinutes float64) Stage {
	if questionCount == 0 {
		return StageOpening
	}
	if maxQuestions-questionCount <= 2 || totalMinutes-elapsedMinutes <= 2 {
		return StageClosing
	}
	return StageMain
}
