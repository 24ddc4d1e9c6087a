package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/matokeo/core"
	"github.com/trezcool/matokeo/core/result"
	emailsvc "github.com/trezcool/matokeo/services/email"
	logsvc "github.com/trezcool/matokeo/services/logger"
	dummydb "github.com/trezcool/matokeo/storage/database/dummy"
)

func setup(t *testing.T) (*result.Service, *dummydb.DB) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	conf := &core.Config{Env: "TEST", TestMode: true, AppName: "Matokeo"}
	repo := dummydb.NewResultRepository(db)
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	svc := result.NewService(conf, repo, logger, emailsvc.NewConsoleServiceMock(conf))
	return svc, db
}

func newRequest(e *echo.Echo, method, path string, data ...[]byte) (echo.Context, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	return ctx, rec
}

// seedScores enrolls two students in one grade and records semester exam marks.
func seedScores(db *dummydb.DB, marksA, marksB float64) (year dummydb.AcademicYear, sem dummydb.Semester) {
	year = db.AddAcademicYear("2025-2026")
	sem = db.AddSemester("Semester 1")
	grade := db.AddGrade("Grade 7")
	math := db.AddSubject("Mathematics")
	exam := db.AddExam("End of Semester 1 Exam", result.KindSemesterExam, year.ID, null.IntFrom(sem.ID), 100)

	a := db.AddStudent("Student A", grade.ID)
	b := db.AddStudent("Student B", grade.ID)
	db.Enroll(a.ID, year.ID, grade.ID)
	db.Enroll(b.ID, year.ID, grade.ID)
	db.RecordScore(a.ID, exam.ID, math.ID, marksA)
	db.RecordScore(b.ID, exam.ID, math.ID, marksB)
	return year, sem
}

func marshal(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal() failed: %v", err)
	}
	return data
}

func Test_resultApi_computeSemester(t *testing.T) {
	svc, db := setup(t)
	validate, _ := core.NewValidators()
	api := &resultApi{svc: svc, validate: validate}
	e := echo.New()

	year, sem := seedScores(db, 70, 90)

	tests := []struct {
		name        string
		body        []byte
		wantCode    int
		wantSummary *result.RunSummary
		wantValErr  bool
	}{
		{
			name:        "valid scope",
			body:        marshal(t, ComputeSemesterRequest{AcademicYearID: year.ID, SemesterID: sem.ID}),
			wantCode:    http.StatusOK,
			wantSummary: &result.RunSummary{StudentsConsidered: 2, StudentsComputed: 2, GradesRanked: 1},
		},
		{
			name:       "missing academic_year_id",
			body:       marshal(t, map[string]int{"semester_id": sem.ID}),
			wantValErr: true,
		},
		{
			name:       "missing semester_id",
			body:       marshal(t, map[string]int{"academic_year_id": year.ID}),
			wantValErr: true,
		},
		{
			name:       "empty body",
			body:       []byte("{}"),
			wantValErr: true,
		},
		{
			name:        "unknown scope computes nothing",
			body:        marshal(t, ComputeSemesterRequest{AcademicYearID: 999, SemesterID: 999}),
			wantCode:    http.StatusOK,
			wantSummary: &result.RunSummary{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newRequest(e, http.MethodPost, "/v1/results/semester/compute", tt.body)

			err := api.computeSemester(ctx)
			if tt.wantValErr {
				assert.Error(t, err)
				_, ok := err.(validator.ValidationErrors)
				assert.True(t, ok, "expected validator.ValidationErrors, got %T", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, string(marshal(t, tt.wantSummary)), rec.Body.String())
		})
	}
}

func Test_resultApi_computeYearly(t *testing.T) {
	svc, db := setup(t)
	validate, _ := core.NewValidators()
	api := &resultApi{svc: svc, validate: validate}
	e := echo.New()

	year, sem := seedScores(db, 70, 90)
	if _, err := svc.ComputeSemesterResults(context.Background(), year.ID, sem.ID); err != nil {
		t.Fatalf("ComputeSemesterResults() failed: %v", err)
	}

	t.Run("valid scope", func(t *testing.T) {
		body := marshal(t, ComputeYearlyRequest{AcademicYearID: year.ID})
		ctx, rec := newRequest(e, http.MethodPost, "/v1/results/yearly/compute", body)

		assert.NoError(t, api.computeYearly(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var summary result.RunSummary
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, result.RunSummary{StudentsConsidered: 2, StudentsComputed: 2, GradesRanked: 1}, summary)
	})

	t.Run("missing academic_year_id", func(t *testing.T) {
		ctx, _ := newRequest(e, http.MethodPost, "/v1/results/yearly/compute", []byte("{}"))

		err := api.computeYearly(ctx)
		assert.Error(t, err)
		_, ok := err.(validator.ValidationErrors)
		assert.True(t, ok, "expected validator.ValidationErrors, got %T", err)
	})
}

func Test_resultApi_query(t *testing.T) {
	svc, db := setup(t)
	validate, _ := core.NewValidators()
	api := &resultApi{svc: svc, validate: validate}
	e := echo.New()

	year, sem := seedScores(db, 70, 90)
	if _, err := svc.ComputeSemesterResults(context.Background(), year.ID, sem.ID); err != nil {
		t.Fatalf("ComputeSemesterResults() failed: %v", err)
	}
	if _, err := svc.ComputeYearlyResults(context.Background(), year.ID); err != nil {
		t.Fatalf("ComputeYearlyResults() failed: %v", err)
	}

	t.Run("semester results, default order", func(t *testing.T) {
		ctx, rec := newRequest(e, http.MethodGet, "/v1/results/semester")

		assert.NoError(t, api.querySemester(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var rows []result.SemesterResultRow
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		if assert.Len(t, rows, 2) {
			// default ordering puts the better rank first
			assert.Equal(t, 1, rows[0].GradeRank)
			assert.Equal(t, "Student B", rows[0].StudentName)
		}
	})

	t.Run("semester results, ascending average", func(t *testing.T) {
		ctx, rec := newRequest(e, http.MethodGet, "/v1/results/semester?ordering=average_score")

		assert.NoError(t, api.querySemester(ctx))

		var rows []result.SemesterResultRow
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		if assert.Len(t, rows, 2) {
			assert.Equal(t, "Student A", rows[0].StudentName)
			assert.True(t, rows[0].AverageScore <= rows[1].AverageScore)
		}
	})

	t.Run("yearly results", func(t *testing.T) {
		ctx, rec := newRequest(e, http.MethodGet, "/v1/results/yearly?ordering=-average_score")

		assert.NoError(t, api.queryYearly(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var rows []result.YearlyResultRow
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		if assert.Len(t, rows, 2) {
			assert.True(t, rows[0].AverageScore >= rows[1].AverageScore)
		}
	})
}

func Test_Ordering_Bind(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name string
		path string
		want []core.DBOrdering
	}{
		{name: "no param", path: "/v1/results/semester"},
		{name: "empty param", path: "/v1/results/semester?ordering="},
		{
			name: "single ascending",
			path: "/v1/results/semester?ordering=student_name",
			want: []core.DBOrdering{{Field: "student_name", Ascending: true}},
		},
		{
			name: "single descending",
			path: "/v1/results/semester?ordering=-average_score",
			want: []core.DBOrdering{{Field: "average_score"}},
		},
		{
			name: "mixed list",
			path: "/v1/results/semester?ordering=-average_score,student_name",
			want: []core.DBOrdering{
				{Field: "average_score"},
				{Field: "student_name", Ascending: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newRequest(e, http.MethodGet, tt.path)

			ord := new(Ordering)
			ord.Bind(ctx)
			assert.Equal(t, tt.want, ord.Orderings)
		})
	}
}
