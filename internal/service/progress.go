package service

// Stage is a step of the pipeline state machine.
type Stage string

const (
	StageNormalizing   Stage = "normalizing"
	StageExtracting    Stage = "extracting"
	StageSanitizing    Stage = "sanitizing"
	StageMaterializing Stage = "materializing"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// Progress is an advisory milestone for the caller's UI.
type Progress struct {
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ProgressReporter receives milestones in order. It may be nil.
type ProgressReporter func(Progress)

var (
	progressNormalizing = Progress{Stage: StageNormalizing, Percent: 10, Message: "Initializing AI analysis..."}
	progressExtracting  = Progress{Stage: StageExtracting, Percent: 30, Message: "Scanning for tasks and deadlines..."}
	progressSanitizing  = Progress{Stage: StageSanitizing, Percent: 60, Message: "Processing model response..."}
	progressStructured  = Progress{Stage: StageSanitizing, Percent: 80, Message: "Structuring your data..."}
	progressSaving      = Progress{Stage: StageMaterializing, Percent: 95, Message: "Saving to dashboard..."}
	progressDone        = Progress{Stage: StageDone, Percent: 100, Message: "Complete! Your thoughts are organized!"}
)

const failedMessage = "Processing failed. Please try again."

func (r ProgressReporter) report(p Progress) {
	if r != nil {
		r(p)
	}
}
