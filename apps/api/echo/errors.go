package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

const (
	msgInvalidInput = "Invalid input"
	msgUnauthorized = "Unauthorized"
	msgNotFound     = "Not found"
	msgUpstream     = "Error processing your request"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Bodies always carry a "message"; field errors come under "errors", upstream error codes under "error".
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message echo.Map

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = echo.Map{"message": origErr.Message}
			if code >= http.StatusInternalServerError {
				logger.Error(http.StatusText(code), err, requestInfo(ctx), actor(ctx))
			}
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[fieldPath(vErr)] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = echo.Map{"message": msgInvalidInput, "errors": fldErrs}
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = echo.Map{"message": origErr.Error()}
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message["errors"] = fldErrs
			}
		case *core.UpstreamError:
			code = http.StatusInternalServerError
			message = echo.Map{"message": msgUpstream, "error": origErr.Code}
			logger.Error(msgUpstream, errors.Wrap(err, origErr.Code), requestInfo(ctx), actor(ctx))
		default:
			switch origErr {
			case core.ErrUnauthorized:
				code = http.StatusUnauthorized
				message = echo.Map{"message": msgUnauthorized}
			case core.ErrNotFound:
				code = http.StatusNotFound
				message = echo.Map{"message": msgNotFound}
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = echo.Map{"message": msg}
				if ctx.Echo().Debug {
					message["detail"] = err.Error()
				}
				logger.Error(msg, errors.Wrap(err, msg), requestInfo(ctx), actor(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
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

// fieldPath turns "Content.topics[0].title" into "topics[0].title".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			return ns[i+1:]
		}
	}
	return fe.Field()
}

func requestInfo(ctx echo.Context) map[string]interface{} {
	req := ctx.Request()
	return map[string]interface{}{
		"method":     req.Method,
		"path":       req.URL.Path,
		"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
	}
}

// actor identifies the caller in error reports.
func actor(ctx echo.Context) core.Actor {
	if claims, err := getContextClaims(ctx); err == nil && claims.IssuedAt != nil {
		return core.Actor{ID: claims.Scope, Name: "portal session " + claims.IssuedAt.UTC().Format("2006-01-02T15:04Z")}
	}
	return core.Actor{ID: "anonymous", Name: "student"}
}

// isClientError reports whether err is rendered with a 4xx status.
func isClientError(err error) bool {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors, *core.ValidationError:
		return true
	case *echo.HTTPError:
		return origErr.Code < http.StatusInternalServerError
	default:
		return origErr == core.ErrUnauthorized || origErr == core.ErrNotFound
	}
}
