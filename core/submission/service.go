package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studysphere/backend/core"
)

var (
	// errors
	ErrNotFound  = core.NewError(core.KindNotFound, "submission not found")
	ErrInvalidID = core.NewValidationError(errors.New("invalid submission id"), core.FieldError{Field: "id", Error: "invalid submission id"})
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		// QuerySubmissions returns submissions ordered by submission date, newest first.
		QuerySubmissions(ctx context.Context, filter *QueryFilter) ([]Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		// GradeSubmission atomically applies Submission.Complete to a stored Submission.
		// The returned bool is true only for the call that moved it out of StatusPending.
		GradeSubmission(ctx context.Context, id string, g GradeUpdate) (Submission, bool, error)
	}

	// ProgressLedger accounts for submitted and marked submissions.
	ProgressLedger interface {
		IncrementSubmitted(ctx context.Context, email string) error
		IncrementMarked(ctx context.Context, email string) error
	}

	Service struct {
		repo     Repository
		ledger   ProgressLedger
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(repo Repository, ledger ProgressLedger, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{repo: repo, ledger: ledger, validate: validate, logger: logger}
}

// ValidateID rejects ids that are not UUIDs.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Submit stores a pending Submission for userEmail then increments their `submitted` counter.
func (svc *Service) Submit(ctx context.Context, userEmail string, ns NewSubmission) (Submission, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Submission{}, err
	}
	userEmail = core.CleanEmail(userEmail)
	if userEmail == "" {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "userEmail", Error: "this field is required"})
	}

	sub, err := svc.repo.CreateSubmission(ctx, Submission{
		ID:           uuid.New().String(),
		AssignmentID: ns.AssignmentID,
		UserEmail:    userEmail,
		GoogleLink:   ns.GoogleLink,
		Note:         ns.Note,
		Title:        ns.Title,
		CreatorName:  ns.CreatorName,
		Status:       StatusPending,
		Marks:        ns.Marks,
		SubmittedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Submission{}, errors.Wrap(err, "creating submission")
	}

	if err = svc.ledger.IncrementSubmitted(ctx, userEmail); err != nil {
		msg := fmt.Sprintf("submission %s stored but %s's submitted counter was not incremented", sub.ID, userEmail)
		svc.logger.Error(msg, core.NewInconsistentError(err, msg))
	}
	return sub, nil
}

// Grade completes a Submission. Only the first grading of a Submission increments its
// submitter's `marked` counter; later ones overwrite the grade.
func (svc *Service) Grade(ctx context.Context, id string, g Grade) (GradeResult, error) {
	if err := ValidateID(id); err != nil {
		return GradeResult{}, err
	}
	if err := svc.validate.Struct(g); err != nil {
		return GradeResult{}, err
	}
	mark, err := g.ReceivedMark.Float64()
	if err != nil {
		return GradeResult{}, core.NewValidationError(err, core.FieldError{Field: "receivedMark", Error: err.Error()})
	}
	if mark < 0 {
		return GradeResult{}, core.NewValidationError(nil, core.FieldError{Field: "receivedMark", Error: "mark cannot be negative"})
	}

	orig, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return GradeResult{}, err
	}
	if orig.Marks > 0 && mark > float64(orig.Marks) {
		return GradeResult{}, core.NewValidationError(nil, core.FieldError{
			Field: "receivedMark",
			Error: fmt.Sprintf("mark cannot exceed %d", orig.Marks),
		})
	}

	sub, transitioned, err := svc.repo.GradeSubmission(ctx, id, GradeUpdate{
		ReceivedMark: mark,
		Feedback:     core.CleanString(g.Feedback),
		MarkedAt:     time.Now().UTC(),
	})
	if err != nil {
		return GradeResult{}, errors.Wrap(err, "grading submission")
	}

	if transitioned {
		if err = svc.ledger.IncrementMarked(ctx, sub.UserEmail); err != nil {
			msg := fmt.Sprintf("submission %s completed but %s's marked counter was not incremented", sub.ID, sub.UserEmail)
			svc.logger.Error(msg, core.NewInconsistentError(err, msg))
		}
	}
	return GradeResult{
		UpdateResult: core.UpdateResult{MatchedCount: 1, ModifiedCount: 1},
		Submission:   sub,
	}, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Submission, error) {
	if err := ValidateID(id); err != nil {
		return Submission{}, err
	}
	return svc.repo.GetSubmission(ctx, id)
}

// QueryByUser returns the submissions of email, newest first.
func (svc *Service) QueryByUser(ctx context.Context, email string) ([]Submission, error) {
	filter := &QueryFilter{UserEmail: email}
	filter.Clean()
	if filter.UserEmail == "" {
		return []Submission{}, nil
	}
	return svc.repo.QuerySubmissions(ctx, filter)
}

// QueryPending returns the submissions waiting for a grade, newest first.
func (svc *Service) QueryPending(ctx context.Context, filter *QueryFilter) ([]Submission, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	filter.Status = StatusPending
	return svc.repo.QuerySubmissions(ctx, filter)
}

// QueryCompleted returns all graded submissions.
func (svc *Service) QueryCompleted(ctx context.Context) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, &QueryFilter{Status: StatusCompleted})
}
