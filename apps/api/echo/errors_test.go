package echoapi

import (
	"io"
	"log"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/matokeo/core"
	logsvc "github.com/trezcool/matokeo/services/logger"
)

func Test_appHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	validate, translator := core.NewValidators()

	var shutdownCalled bool
	handler := newAppHTTPErrorHandler(
		logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
		translator,
		func() { shutdownCalled = true },
	)

	valErr := validate.Struct(ComputeSemesterRequest{}) // both fields missing

	tests := []struct {
		name         string
		err          error
		wantCode     int
		wantBody     string
		wantShutdown bool
	}{
		{
			name:     "echo HTTP error",
			err:      echo.NewHTTPError(http.StatusNotFound, "Not Found"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"Not Found"}`,
		},
		{
			name:     "request validation errors",
			err:      valErr,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":{"academic_year_id":"this field is required","semester_id":"this field is required"}}`,
		},
		{
			name:     "domain validation error with fields",
			err:      core.NewValidationError(nil, core.FieldError{Field: "semester_id", Error: "a valid semester is required"}),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":{"semester_id":"a valid semester is required"}}`,
		},
		{
			name:     "domain validation error without fields",
			err:      core.NewValidationError(errors.New("invalid scope")),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid scope"}`,
		},
		{
			name:     "unexpected error",
			err:      errors.New("kaboom"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Internal Server Error"}`,
		},
		{
			name:         "wrapped shutdown error",
			err:          errors.Wrap(core.NewShutdownError("store is gone"), "upserting semester result"),
			wantCode:     http.StatusInternalServerError,
			wantBody:     `{"error":"Internal Server Error"}`,
			wantShutdown: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdownCalled = false
			ctx, rec := newRequest(e, http.MethodGet, "/")

			handler(tt.err, ctx)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantShutdown, shutdownCalled)
		})
	}
}
