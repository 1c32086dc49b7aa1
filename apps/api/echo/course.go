package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/course"
)

const msgContentUpdated = "Data updated successfully"

var errInvalidInput = errors.New(msgInvalidInput)

func registerCourseAPI(g *echo.Group, portal echo.MiddlewareFunc, svc *course.Service, slides course.SlidesLookup, m *metrics) {
	g.GET("/courseData", readCourseData(svc, slides))
	g.POST("/courseData", writeCourseData(svc, m), portal)
}

func readCourseData(svc *course.Service, slides course.SlidesLookup) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		snap, err := svc.Snapshot(ctx.Request().Context(), slides)
		if err != nil {
			return errors.Wrap(err, "loading course content")
		}
		return ctx.JSON(http.StatusOK, snap)
	}
}

func writeCourseData(svc *course.Service, m *metrics) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var content course.Content
		if err := ctx.Bind(&content); err != nil {
			m.contentWrites.WithLabelValues(resultInvalid).Inc()
			if herr, ok := err.(*echo.HTTPError); ok && herr.Code == http.StatusBadRequest {
				return core.NewValidationError(errInvalidInput)
			}
			return err
		}

		_, err := svc.Update(ctx.Request().Context(), content)
		m.contentWrites.WithLabelValues(result(err)).Inc()
		if err != nil {
			return errors.Wrap(err, "updating course content")
		}
		return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": msgContentUpdated})
	}
}
