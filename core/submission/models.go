package submission

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studysphere/backend/core"
)

// Status of a Submission. A Submission starts StatusPending and ends StatusCompleted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusCompleted
}

type Submission struct {
	ID           string       `json:"_id"`
	AssignmentID string       `json:"assignmentId"`
	UserEmail    string       `json:"userEmail"`
	GoogleLink   string       `json:"googleLink"`
	Note         string       `json:"note"`
	Title        string       `json:"title"`
	CreatorName  string       `json:"creatorName"` // snapshot taken at submission time
	Status       Status       `json:"status"`
	Marks        int          `json:"marks"` // maximum attainable mark
	ReceivedMark null.Float64 `json:"receivedMark"`
	Feedback     null.String  `json:"feedback"`
	SubmittedAt  time.Time    `json:"submittedAt"` // UTC
	MarkedAt     null.Time    `json:"markedAt"`    // UTC
}

func (s Submission) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// Complete records a grade on s, moving it to StatusCompleted.
// It reports whether s was pending, i.e. whether this call performed the transition.
// Re-grading a completed Submission overwrites its mark, feedback and markedAt.
func (s *Submission) Complete(g GradeUpdate) bool {
	first := s.Status != StatusCompleted
	s.Status = StatusCompleted
	s.ReceivedMark = null.Float64From(g.ReceivedMark)
	s.Feedback = null.StringFrom(g.Feedback)
	s.MarkedAt = null.TimeFrom(g.MarkedAt)
	return first
}

// NewSubmission contains information needed to submit a solution to an Assignment.
type NewSubmission struct {
	AssignmentID string `json:"assignmentId" validate:"required,uuid"`
	GoogleLink   string `json:"googleLink" validate:"required,url"`
	Note         string `json:"note" validate:"max=2000"`
	Title        string `json:"title" validate:"required,notblank,max=200"`
	Marks        int    `json:"marks" validate:"required,gt=0"`
	CreatorName  string `json:"creatorName"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.AssignmentID = core.CleanString(ns.AssignmentID, true /* lower */)
	ns.GoogleLink = core.CleanString(ns.GoogleLink)
	ns.Note = core.CleanString(ns.Note)
	ns.Title = core.CleanString(ns.Title)
	ns.CreatorName = core.CleanString(ns.CreatorName)
	return validate.Struct(ns)
}

// Mark is a received mark as sent by graders: a JSON number or a numeric string.
type Mark string

func (m *Mark) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Mark(s)
		return nil
	}
	*m = Mark(data)
	return nil
}

// Float64 parses the mark. Blank, non-numeric, infinite and NaN marks are rejected.
func (m Mark) Float64() (float64, error) {
	s := strings.TrimSpace(string(m))
	if s == "" {
		return 0, errors.New("mark is required")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("mark %q is not a number", s)
	}
	return f, nil
}

// Grade contains information provided by a grader.
type Grade struct {
	ReceivedMark Mark   `json:"receivedMark"`
	Feedback     string `json:"feedback" validate:"max=5000"`
}

// GradeUpdate is a validated Grade ready to be stored.
type GradeUpdate struct {
	ReceivedMark float64
	Feedback     string
	MarkedAt     time.Time
}

// GradeResult is the outcome of grading a Submission.
type GradeResult struct {
	core.UpdateResult
	Submission Submission `json:"submission"`
}

type QueryFilter struct {
	Search    string `query:"search"` // case-insensitive match on Submission.Title
	Status    Status `query:"-"`
	UserEmail string `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || (qf.Search == "" && qf.Status == "" && qf.UserEmail == "")
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.UserEmail = core.CleanEmail(qf.UserEmail)
}
