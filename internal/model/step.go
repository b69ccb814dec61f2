package model

// Step is the position of a user in the registration funnel.
type Step string

const (
	StepAskName  Step = "ASK_NAME"
	StepAskPhone Step = "ASK_PHONE"
	StepAskJob   Step = "ASK_JOB"
	StepDone     Step = "DONE"
)

// Valid reports whether s is one of the known funnel steps.
func (s Step) Valid() bool {
	switch s {
	case StepAskName, StepAskPhone, StepAskJob, StepDone:
		return true
	}
	return false
}

// Rank orders steps along the funnel. Unknown steps rank -1.
func (s Step) Rank() int {
	switch s {
	case StepAskName:
		return 0
	case StepAskPhone:
		return 1
	case StepAskJob:
		return 2
	case StepDone:
		return 3
	}
	return -1
}

func (s Step) String() string {
	return string(s)
}
