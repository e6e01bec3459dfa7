package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studysphere/backend/core/submission"
)

type submissionApi struct {
	svc *submission.Service
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *submission.Service) {
	api := submissionApi{svc: svc}

	g.GET("/pending-assignments", api.queryPending)
	g.GET("/submissions", api.queryMine, jwt)
	g.POST("/submissions", api.submit, jwt)
	g.PUT("/submissions/:id", api.grade, jwt, notOwnSubmissionMiddleware(svc))
}

// Handlers

func (api *submissionApi) queryPending(ctx echo.Context) error {
	filter := new(submission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	res, err := api.svc.QueryPending(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying pending submissions")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *submissionApi) queryMine(ctx echo.Context) error {
	email, err := getContextEmail(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.QueryByUser(ctx.Request().Context(), email)
	if err != nil {
		return errors.Wrap(err, "querying my submissions")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *submissionApi) submit(ctx echo.Context) error {
	email, err := getContextEmail(ctx)
	if err != nil {
		return err
	}

	var data submission.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	s, err := api.svc.Submit(ctx.Request().Context(), email, data)
	if err != nil {
		return errors.Wrap(err, "submitting")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *submissionApi) grade(ctx echo.Context) error {
	var data submission.Grade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}

	res, err := api.svc.Grade(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, res)
}
