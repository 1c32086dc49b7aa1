package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/slide"
)

const (
	msgUploaded   = "File uploaded successfully"
	msgNoPDFFound = "No PDF found"

	// multipart framing on top of the file itself
	uploadOverhead = 1 << 20
)

func registerSlidesAPI(g *echo.Group, portal echo.MiddlewareFunc, svc *slide.Service, m *metrics) {
	g.POST("/uploadSlides", uploadSlides(svc, m), portal)
	g.GET("/slides/current", currentSlides(svc))
	g.GET("/slides/current/info", currentSlidesInfo(svc))
}

func uploadSlides(svc *slide.Service, m *metrics) echo.HandlerFunc {
	return func(ctx echo.Context) (err error) {
		defer func() { m.uploadTotal.WithLabelValues(result(err)).Inc() }()

		req := ctx.Request()
		req.Body = http.MaxBytesReader(ctx.Response(), req.Body, svc.MaxBytes()+uploadOverhead)

		fh, err := ctx.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return core.NewValidationError(slide.ErrTooLarge)
			}
			return core.NewValidationError(slide.ErrNoFile)
		}
		if fh.Size > svc.MaxBytes() {
			return core.NewValidationError(slide.ErrTooLarge)
		}

		src, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer src.Close()

		file, err := svc.Upload(req.Context(), src, fh.Header.Get(echo.HeaderContentType))
		if err != nil {
			return errors.Wrap(err, "uploading slides")
		}
		return ctx.JSON(http.StatusOK, echo.Map{
			"success":  true,
			"filename": file.Filename,
			"message":  msgUploaded,
		})
	}
}

func currentSlides(svc *slide.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		file, err := svc.Current(ctx.Request().Context())
		if err != nil {
			switch errors.Cause(err) {
			case core.ErrNotFound:
				return echo.NewHTTPError(http.StatusNotFound, msgNoPDFFound)
			case slide.ErrBadData:
				return echo.NewHTTPError(http.StatusInternalServerError, slide.ErrBadData.Error()).SetInternal(err)
			}
			return errors.Wrap(err, "loading current slides")
		}

		hdr := ctx.Response().Header()
		hdr.Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", file.Filename))
		hdr.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		hdr.Set("Pragma", "no-cache")
		hdr.Set("Expires", "0")
		return ctx.Blob(http.StatusOK, file.ContentType, file.Data)
	}
}

func currentSlidesInfo(svc *slide.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		info, err := svc.Info(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "loading current slides info")
		}
		msg := "PDF found"
		if !info.HasData {
			msg = msgNoPDFFound
		}
		return ctx.JSON(http.StatusOK, struct {
			Message string `json:"message"`
			slide.Info
		}{msg, info})
	}
}
