package domain

// EvalCase is one row of an evaluation sheet.
type EvalCase struct {
	// Row is the 1-based row in the backing sheet or file.
	Row int `yaml:"-"`

	Question         string `yaml:"question"`
	FollowUp         string `yaml:"follow_up,omitempty"`
	Response         string `yaml:"response,omitempty"`
	FollowUpResponse string `yaml:"follow_up_response,omitempty"`
}

// Answered returns true if every asked question already has a response.
func (c *EvalCase) Answered() bool {
	if c.Response == "" {
		return false
	}
	return c.FollowUp == "" || c.FollowUpResponse != ""
}

// EvalRequest describes one evaluation run.
type EvalRequest struct {
	// CourseID selects the collection to evaluate against.
	CourseID string

	// Source is a cases file path or a spreadsheet id.
	Source string

	// Worksheet names the sheet tab when Source is a spreadsheet.
	Worksheet string

	// Overwrite re-asks cases that already have responses.
	Overwrite bool
}

// EvalReport summarises an evaluation run.
type EvalReport struct {
	CourseID string
	Total    int
	Answered int
	Skipped  int
	Failed   int
}
