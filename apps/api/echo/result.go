package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/matokeo/core/result"
)

type resultApi struct {
	svc      *result.Service
	validate *validator.Validate
}

func registerResultAPI(g *echo.Group, svc *result.Service, validate *validator.Validate) {
	api := resultApi{svc: svc, validate: validate}

	rg := g.Group("/results")
	rg.POST("/semester/compute", api.computeSemester)
	rg.POST("/yearly/compute", api.computeYearly)
	rg.GET("/semester", api.querySemester)
	rg.GET("/yearly", api.queryYearly)
}

type (
	ComputeSemesterRequest struct {
		AcademicYearID int `json:"academic_year_id" validate:"required,min=1"`
		SemesterID     int `json:"semester_id" validate:"required,min=1"`
	}

	ComputeYearlyRequest struct {
		AcademicYearID int `json:"academic_year_id" validate:"required,min=1"`
	}
)

// Handlers

func (api *resultApi) computeSemester(ctx echo.Context) error {
	data := new(ComputeSemesterRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	summary, err := api.svc.ComputeSemesterResults(ctx.Request().Context(), data.AcademicYearID, data.SemesterID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *resultApi) computeYearly(ctx echo.Context) error {
	data := new(ComputeYearlyRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	summary, err := api.svc.ComputeYearlyResults(ctx.Request().Context(), data.AcademicYearID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *resultApi) querySemester(ctx echo.Context) error {
	ord := new(Ordering)
	ord.Bind(ctx)

	rows, err := api.svc.ListSemesterResults(ctx.Request().Context(), ord.Orderings...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *resultApi) queryYearly(ctx echo.Context) error {
	ord := new(Ordering)
	ord.Bind(ctx)

	rows, err := api.svc.ListYearlyResults(ctx.Request().Context(), ord.Orderings...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}
