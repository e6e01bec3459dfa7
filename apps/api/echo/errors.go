package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message interface{}
			httpErr *echo.HTTPError
			fldErrs validator.ValidationErrors
			vErr    *core.ValidationError
			cErr    *core.Error
		)

		switch {
		case errors.As(err, &httpErr):
			if httpErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = httpErr.Message
				break
			}
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &fldErrs):
			code = http.StatusBadRequest
			message = core.TranslateErrors(fldErrs, translator)
		case errors.As(err, &vErr):
			code = http.StatusBadRequest
			if len(vErr.Fields) > 0 {
				msgs := make(map[string]string, len(vErr.Fields))
				for _, fErr := range vErr.Fields {
					msgs[fErr.Field] = fErr.Error
				}
				message = msgs
			} else {
				message = vErr.Error()
			}
		case errors.As(err, &cErr) && cErr.Kind == core.KindNotFound:
			code = http.StatusNotFound
			message = cErr.Msg
		case errors.As(err, &cErr) && cErr.Kind == core.KindAlreadyExists:
			code = http.StatusConflict
			message = cErr.Msg
		default: // any other error is a server error
			code = http.StatusInternalServerError
			if core.KindOf(err) == core.KindStoreUnavailable {
				code = http.StatusServiceUnavailable
			}
			msg := http.StatusText(code)
			message = msg

			var usr user.User
			if email, eErr := getContextEmail(ctx); eErr == nil {
				usr.Email = email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
