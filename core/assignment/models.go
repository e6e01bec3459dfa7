package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/studysphere/backend/core"
)

// Difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

type Assignment struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Difficulty   string    `json:"difficulty"`
	Marks        int       `json:"marks"`
	Thumbnail    string    `json:"thumbnail"`
	DueDate      null.Time `json:"dueDate"`
	CreatorEmail string    `json:"creatorEmail"`
	CreatorName  string    `json:"creatorName"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

// IsCreatedBy reports whether email is the one of the Assignment's creator.
func (a Assignment) IsCreatedBy(email string) bool {
	return email != "" && a.CreatorEmail == core.CleanEmail(email)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Difficulty  string    `json:"difficulty" validate:"required,difficulty"`
	Marks       int       `json:"marks" validate:"required,gt=0"`
	Thumbnail   string    `json:"thumbnail" validate:"omitempty,url"`
	DueDate     null.Time `json:"dueDate"`
	CreatorName string    `json:"creatorName"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Difficulty = core.CleanString(na.Difficulty, true /* lower */)
	na.Thumbnail = core.CleanString(na.Thumbnail)
	na.CreatorName = core.CleanString(na.CreatorName)
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
// nil fields are left untouched.
type UpdateAssignment struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Difficulty  *string    `json:"difficulty" validate:"omitempty,difficulty"`
	Marks       *int       `json:"marks" validate:"omitempty,gt=0"`
	Thumbnail   *string    `json:"thumbnail" validate:"omitempty,url"`
	DueDate     *null.Time `json:"dueDate"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	clean := func(s *string, lower ...bool) {
		if s != nil {
			*s = core.CleanString(*s, lower...)
		}
	}
	clean(ua.Title)
	clean(ua.Description)
	clean(ua.Difficulty, true /* lower */)
	clean(ua.Thumbnail)
	return validate.Struct(ua)
}

// IsEmpty reports whether the patch sets no field at all.
func (ua *UpdateAssignment) IsEmpty() bool {
	return ua.Title == nil && ua.Description == nil && ua.Difficulty == nil &&
		ua.Marks == nil && ua.Thumbnail == nil && ua.DueDate == nil
}

// Apply returns a copy of a with the patch applied, and whether anything changed.
func (ua UpdateAssignment) Apply(a Assignment) (Assignment, bool) {
	orig := a
	if ua.Title != nil {
		a.Title = *ua.Title
	}
	if ua.Description != nil {
		a.Description = *ua.Description
	}
	if ua.Difficulty != nil {
		a.Difficulty = *ua.Difficulty
	}
	if ua.Marks != nil {
		a.Marks = *ua.Marks
	}
	if ua.Thumbnail != nil {
		a.Thumbnail = *ua.Thumbnail
	}
	if ua.DueDate != nil {
		a.DueDate = *ua.DueDate
	}
	changed := a.Title != orig.Title || a.Description != orig.Description || a.Difficulty != orig.Difficulty ||
		a.Marks != orig.Marks || a.Thumbnail != orig.Thumbnail ||
		a.DueDate.Valid != orig.DueDate.Valid || !a.DueDate.Time.Equal(orig.DueDate.Time)
	return a, changed
}

type QueryFilter struct {
	Search       string `query:"search"` // case-insensitive match on Assignment.Title
	Difficulty   string `query:"difficulty"`
	CreatorEmail string `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || (qf.Search == "" && qf.Difficulty == "" && qf.CreatorEmail == "")
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Difficulty = core.CleanString(qf.Difficulty, true /* lower */)
	qf.CreatorEmail = core.CleanEmail(qf.CreatorEmail)
}
