package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studysphere/backend/core/assignment"
	"github.com/studysphere/backend/core/submission"
)

const contextObjectKey = "object"

var errOwnSubmission = echo.NewHTTPError(http.StatusForbidden, "you cannot grade your own submission")

// assignmentCreatorMiddleware loads the Assignment under `:id` and only lets its creator through.
func assignmentCreatorMiddleware(svc *assignment.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			email, err := getContextEmail(ctx)
			if err != nil {
				return err
			}
			a, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "getting assignment")
			}
			if !a.IsCreatedBy(email) {
				return errHttpForbidden
			}
			ctx.Set(contextObjectKey, a)
			return next(ctx)
		}
	}
}

// notOwnSubmissionMiddleware loads the Submission under `:id` and rejects its submitter.
func notOwnSubmissionMiddleware(svc *submission.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			email, err := getContextEmail(ctx)
			if err != nil {
				return err
			}
			s, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "getting submission")
			}
			if s.UserEmail == email {
				return errOwnSubmission
			}
			ctx.Set(contextObjectKey, s)
			return next(ctx)
		}
	}
}
