package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studysphere/backend/core"
)

// Counter names one of the progress counters.
type Counter string

const (
	CounterCreated   Counter = "created"
	CounterSubmitted Counter = "submitted"
	CounterMarked    Counter = "marked"
)

var Counters = []Counter{CounterCreated, CounterSubmitted, CounterMarked}

// Progress holds the denormalized tallies of a User's activity.
type Progress struct {
	Created   int `json:"created"`
	Submitted int `json:"submitted"`
	Marked    int `json:"marked"`
}

// Get returns the value of the given counter.
func (p Progress) Get(c Counter) int {
	switch c {
	case CounterCreated:
		return p.Created
	case CounterSubmitted:
		return p.Submitted
	case CounterMarked:
		return p.Marked
	}
	return 0
}

// Inc increments the given counter by one.
func (p *Progress) Inc(c Counter) {
	switch c {
	case CounterCreated:
		p.Created++
	case CounterSubmitted:
		p.Submitted++
	case CounterMarked:
		p.Marked++
	}
}

type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Photo     string    `json:"photo"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"displayName"`
	Photo string `json:"photoURL" validate:"omitempty,url"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanEmail(nu.Email)
	nu.Name = core.CleanString(nu.Name)
	nu.Photo = core.CleanString(nu.Photo)
	return validate.Struct(nu)
}

type QueryFilter struct {
	Search string `query:"search"` // case-insensitive match on User.Name
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
