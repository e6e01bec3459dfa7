package assignment

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
	ErrNotFound  = core.NewError(core.KindNotFound, "assignment not found")
	ErrInvalidID = core.NewValidationError(errors.New("invalid assignment id"), core.FieldError{Field: "id", Error: "invalid assignment id"})
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// QueryAssignments returns assignments ordered by creation date, oldest first.
		QueryAssignments(ctx context.Context, filter *QueryFilter) ([]Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		// UpdateAssignment stores the given patch on a single document.
		UpdateAssignment(ctx context.Context, id string, patch UpdateAssignment, updatedAt time.Time) (core.UpdateResult, error)
		// DeleteAssignment returns ErrNotFound when nothing was deleted.
		DeleteAssignment(ctx context.Context, id string) error
	}

	// ProgressLedger accounts for created assignments.
	ProgressLedger interface {
		IncrementCreated(ctx context.Context, email string) error
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

// Create stores a new Assignment then increments the creator's `created` counter.
// A failed increment is logged; the Assignment is kept.
func (svc *Service) Create(ctx context.Context, na NewAssignment, creatorEmail string) (Assignment, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}
	creatorEmail = core.CleanEmail(creatorEmail)
	if creatorEmail == "" {
		return Assignment{}, core.NewValidationError(nil, core.FieldError{Field: "creatorEmail", Error: "this field is required"})
	}

	now := time.Now().UTC()
	a, err := svc.repo.CreateAssignment(ctx, Assignment{
		ID:           uuid.New().String(),
		Title:        na.Title,
		Description:  na.Description,
		Difficulty:   na.Difficulty,
		Marks:        na.Marks,
		Thumbnail:    na.Thumbnail,
		DueDate:      na.DueDate,
		CreatorEmail: creatorEmail,
		CreatorName:  na.CreatorName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}

	if err = svc.ledger.IncrementCreated(ctx, creatorEmail); err != nil {
		msg := fmt.Sprintf("assignment %s stored but %s's created counter was not incremented", a.ID, creatorEmail)
		svc.logger.Error(msg, core.NewInconsistentError(err, msg))
	}
	return a, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Assignment, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryAssignments(ctx, filter)
}

// QueryByCreator returns the assignments created by email, newest first.
func (svc *Service) QueryByCreator(ctx context.Context, email string) ([]Assignment, error) {
	filter := &QueryFilter{CreatorEmail: email}
	filter.Clean()
	if filter.CreatorEmail == "" {
		return []Assignment{}, nil
	}
	res, err := svc.repo.QueryAssignments(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Assignment, error) {
	if err := ValidateID(id); err != nil {
		return Assignment{}, err
	}
	return svc.repo.GetAssignment(ctx, id)
}

// Update applies a partial update. Updating an unknown id matches nothing and is not an error.
func (svc *Service) Update(ctx context.Context, id string, ua UpdateAssignment) (core.UpdateResult, error) {
	if err := ValidateID(id); err != nil {
		return core.UpdateResult{}, err
	}
	if err := ua.Validate(svc.validate); err != nil {
		return core.UpdateResult{}, err
	}
	res, err := svc.repo.UpdateAssignment(ctx, id, ua, time.Now().UTC())
	if err != nil {
		return core.UpdateResult{}, errors.Wrap(err, "updating assignment")
	}
	return res, nil
}

// Delete removes an Assignment. Its submissions are left in place.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(ctx, id)
}
