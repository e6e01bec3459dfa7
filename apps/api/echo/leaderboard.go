package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/leaderboard"
)

type leaderboardApi struct {
	agg *leaderboard.Aggregator
}

func registerLeaderboardAPI(g *echo.Group, agg *leaderboard.Aggregator) {
	api := leaderboardApi{agg: agg}

	g.GET("/leaderboard", api.compute)
}

type leaderboardQuery struct {
	Limit int `query:"limit"`
}

func (api *leaderboardApi) compute(ctx echo.Context) error {
	var q leaderboardQuery
	if err := ctx.Bind(&q); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "limit", Error: "limit must be an integer"})
	}

	entries, err := api.agg.Compute(ctx.Request().Context(), q.Limit)
	if err != nil {
		return errors.Wrap(err, "computing leaderboard")
	}
	return ctx.JSON(http.StatusOK, entries)
}
