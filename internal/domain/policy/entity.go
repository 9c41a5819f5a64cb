package policy

import "time"

// Policy is the company-wide attendance configuration: expected work hours,
// the late-arrival grace, the automatic-break rule, and the quick-input
// presets offered by the clock screen. It is passed explicitly to whoever
// needs it; nothing reads it from ambient state.
type Policy struct {
	ID                    string
	ExpectedStart         string // "15:04"
	ExpectedEnd           string // "15:04"
	GraceMinutes          int
	AutoBreakAfterMinutes int
	QuickInputs           []QuickInput
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// QuickInput is a one-tap preset for filling a day's start and end times.
type QuickInput struct {
	Label string `json:"label"`
	Start string `json:"start"` // "15:04"
	End   string `json:"end"`   // "15:04"
}

// Default mirrors the values a freshly provisioned company starts with.
func Default() Policy {
	return Policy{
		ExpectedStart:         "09:00",
		ExpectedEnd:           "18:00",
		GraceMinutes:          10,
		AutoBreakAfterMinutes: 360,
		QuickInputs: []QuickInput{
			{Label: "Full day", Start: "09:00", End: "18:00"},
			{Label: "Morning off", Start: "13:00", End: "18:00"},
			{Label: "Afternoon off", Start: "09:00", End: "13:00"},
		},
	}
}

const clockLayout = "15:04"

// ExpectedStartOn anchors the policy's expected start time onto the given
// work date. ok is false when the configured value does not parse.
func (p Policy) ExpectedStartOn(date time.Time) (time.Time, bool) {
	return clockOn(p.ExpectedStart, date)
}

// ExpectedEndOn anchors the policy's expected end time onto the given work
// date.
func (p Policy) ExpectedEndOn(date time.Time) (time.Time, bool) {
	return clockOn(p.ExpectedEnd, date)
}

func clockOn(clock string, date time.Time) (time.Time, bool) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, date.Location()), true
}
