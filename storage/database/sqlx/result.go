package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/matokeo/core"
	"github.com/trezcool/matokeo/core/result"
)

type resultRepository struct {
	db *sqlx.DB
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *sql.DB) result.Repository {
	return &resultRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo resultRepository) FindExams(ctx context.Context, academicYearID int, semesterID null.Int) ([]result.Exam, error) {
	q := `
		SELECT id, name, COALESCE(kind, '') AS kind, academic_year_id, semester_id, max_marks
		FROM exams
		WHERE academic_year_id = $1`
	args := []interface{}{academicYearID}
	if semesterID.Valid {
		q += " AND semester_id = $2"
		args = append(args, semesterID.Int)
	} else {
		q += " AND semester_id IS NULL"
	}
	q += " ORDER BY id"

	exams := make([]result.Exam, 0)
	if err := repo.db.SelectContext(ctx, &exams, q, args...); err != nil {
		return nil, wrapErr(err, "selecting exams")
	}
	return exams, nil
}

func (repo resultRepository) FindScoreEntries(ctx context.Context, studentID, academicYearID, semesterID int) ([]result.ScoreEntry, error) {
	q := `
		SELECT se.student_id,
		       se.subject_id,
		       se.exam_id,
		       se.marks,
		       e.name                AS exam_name,
		       COALESCE(e.kind, '') AS exam_kind,
		       e.max_marks          AS exam_max_marks
		FROM score_entries se
		         JOIN exams e ON se.exam_id = e.id
		WHERE se.student_id = $1
		  AND e.academic_year_id = $2
		  AND e.semester_id = $3
		ORDER BY se.subject_id, se.exam_id`

	entries := make([]result.ScoreEntry, 0)
	if err := repo.db.SelectContext(ctx, &entries, q, studentID, academicYearID, semesterID); err != nil {
		return nil, wrapErr(err, "selecting score entries")
	}
	return entries, nil
}

func (repo resultRepository) FindEnrolledStudents(ctx context.Context, academicYearID int) ([]result.Enrollment, error) {
	q := `
		SELECT s.id               AS student_id,
		       s.current_grade_id AS grade_id
		FROM students s
		         JOIN enrollments en ON en.student_id = s.id
		WHERE en.academic_year_id = $1
		ORDER BY s.id`

	enrollments := make([]result.Enrollment, 0)
	if err := repo.db.SelectContext(ctx, &enrollments, q, academicYearID); err != nil {
		return nil, wrapErr(err, "selecting enrollments")
	}
	return enrollments, nil
}

func (repo resultRepository) FindSemesterStandings(ctx context.Context, academicYearID int) ([]result.SemesterStanding, error) {
	q := `
		SELECT sr.student_id,
		       sr.semester_id,
		       sr.total_marks,
		       sr.average_score,
		       s.current_grade_id AS grade_id
		FROM semester_results sr
		         JOIN students s ON sr.student_id = s.id
		WHERE sr.academic_year_id = $1
		ORDER BY sr.student_id, sr.semester_id`

	standings := make([]result.SemesterStanding, 0)
	if err := repo.db.SelectContext(ctx, &standings, q, academicYearID); err != nil {
		return nil, wrapErr(err, "selecting semester standings")
	}
	return standings, nil
}

func (repo resultRepository) UpsertSemesterResult(ctx context.Context, res result.SemesterResult) (result.SemesterResult, error) {
	q := `
		INSERT INTO semester_results (student_id, semester_id, academic_year_id, total_marks, average_score, grade_rank)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, semester_id, academic_year_id)
		    DO UPDATE SET total_marks   = EXCLUDED.total_marks,
		                  average_score = EXCLUDED.average_score,
		                  grade_rank    = EXCLUDED.grade_rank
		RETURNING id`

	err := repo.db.QueryRowContext(
		ctx, q,
		res.StudentID, res.SemesterID, res.AcademicYearID, res.TotalMarks, res.AverageScore, res.GradeRank,
	).Scan(&res.ID)
	if err != nil {
		return result.SemesterResult{}, wrapErr(err, "upserting semester result")
	}
	return res, nil
}

func (repo resultRepository) UpsertYearlyResult(ctx context.Context, res result.YearlyResult) (result.YearlyResult, error) {
	q := `
		INSERT INTO yearly_results (student_id, academic_year_id, total_marks, average_score, grade_rank)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, academic_year_id)
		    DO UPDATE SET total_marks   = EXCLUDED.total_marks,
		                  average_score = EXCLUDED.average_score,
		                  grade_rank    = EXCLUDED.grade_rank
		RETURNING id`

	err := repo.db.QueryRowContext(
		ctx, q,
		res.StudentID, res.AcademicYearID, res.TotalMarks, res.AverageScore, res.GradeRank,
	).Scan(&res.ID)
	if err != nil {
		return result.YearlyResult{}, wrapErr(err, "upserting yearly result")
	}
	return res, nil
}

func (repo resultRepository) QuerySemesterResults(ctx context.Context, ordering ...core.DBOrdering) ([]result.SemesterResultRow, error) {
	q := `
		SELECT st.name       AS student_name,
		       st.admission_no,
		       g.name        AS grade_name,
		       ay.year_name  AS year_name,
		       sem.name      AS semester_name,
		       sr.total_marks,
		       sr.average_score,
		       sr.grade_rank
		FROM semester_results sr
		         JOIN students st ON sr.student_id = st.id
		         JOIN grades g ON st.current_grade_id = g.id
		         JOIN academic_years ay ON sr.academic_year_id = ay.id
		         JOIN semesters sem ON sr.semester_id = sem.id`
	q += orderBy(ordering, semesterRowColumns, "ay.year_name, sem.name, g.name, sr.grade_rank, st.id")

	rows := make([]result.SemesterResultRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, wrapErr(err, "selecting semester result rows")
	}
	return rows, nil
}

func (repo resultRepository) QueryYearlyResults(ctx context.Context, ordering ...core.DBOrdering) ([]result.YearlyResultRow, error) {
	q := `
		SELECT st.name      AS student_name,
		       st.admission_no,
		       g.name       AS grade_name,
		       ay.year_name AS year_name,
		       yr.total_marks,
		       yr.average_score,
		       yr.grade_rank
		FROM yearly_results yr
		         JOIN students st ON yr.student_id = st.id
		         JOIN grades g ON st.current_grade_id = g.id
		         JOIN academic_years ay ON yr.academic_year_id = ay.id`
	q += orderBy(ordering, yearlyRowColumns, "ay.year_name, g.name, yr.grade_rank, st.id")

	rows := make([]result.YearlyResultRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, wrapErr(err, "selecting yearly result rows")
	}
	return rows, nil
}

// orderable fields, keyed by their JSON name; anything else is ignored.
var (
	semesterRowColumns = map[string]string{
		"student_name":  "st.name",
		"admission_no":  "st.admission_no",
		"grade_name":    "g.name",
		"year_name":     "ay.year_name",
		"semester_name": "sem.name",
		"total_marks":   "sr.total_marks",
		"average_score": "sr.average_score",
		"grade_rank":    "sr.grade_rank",
	}
	yearlyRowColumns = map[string]string{
		"student_name":  "st.name",
		"admission_no":  "st.admission_no",
		"grade_name":    "g.name",
		"year_name":     "ay.year_name",
		"total_marks":   "yr.total_marks",
		"average_score": "yr.average_score",
		"grade_rank":    "yr.grade_rank",
	}
)

// wrapErr adds context to a store error. Fatal connection-level failures are
// classified as shutdown errors so the server can stop gracefully instead of
// serving against a dead database.
func wrapErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		switch pqErr.Severity {
		case "FATAL", "PANIC":
			return errors.Wrap(core.NewShutdownError(pqErr.Message), msg)
		}
	}
	return errors.Wrap(err, msg)
}

func orderBy(ordering []core.DBOrdering, columns map[string]string, fallback string) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := columns[ord.Field]; ok {
			clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(clauses) == 0 {
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
