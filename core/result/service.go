package result

import (
	"context"
	"fmt"
	"net/mail"
	"sort"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/matokeo/core"
)

type (
	// Repository is the narrow store contract the engine computes against.
	// The CRUD layer owning students, exams and scores writes through its own
	// channels; the engine only ever needs these operations.
	Repository interface {
		// FindExams returns the exams of an (academic year, semester) scope.
		// A null semesterID selects yearly exams.
		FindExams(ctx context.Context, academicYearID int, semesterID null.Int) ([]Exam, error)
		// FindScoreEntries returns a student's score entries for the scope,
		// with exam name/kind/max marks joined in.
		FindScoreEntries(ctx context.Context, studentID, academicYearID, semesterID int) ([]ScoreEntry, error)
		// FindEnrolledStudents returns (student, grade) pairs for an academic year.
		FindEnrolledStudents(ctx context.Context, academicYearID int) ([]Enrollment, error)
		// FindSemesterStandings returns the stored semester results of an
		// academic year joined with each student's current grade.
		FindSemesterStandings(ctx context.Context, academicYearID int) ([]SemesterStanding, error)
		// UpsertSemesterResult inserts or overwrites the result keyed by
		// (student, semester, academic year).
		UpsertSemesterResult(ctx context.Context, res SemesterResult) (SemesterResult, error)
		// UpsertYearlyResult inserts or overwrites the result keyed by
		// (student, academic year).
		UpsertYearlyResult(ctx context.Context, res YearlyResult) (YearlyResult, error)
		QuerySemesterResults(ctx context.Context, ordering ...core.DBOrdering) ([]SemesterResultRow, error)
		QueryYearlyResults(ctx context.Context, ordering ...core.DBOrdering) ([]YearlyResultRow, error)
	}

	Service struct {
		conf    *core.Config
		repo    Repository
		log     core.Logger
		mailSvc core.EmailService
	}

	// computed carries a student's totals to the ranking and upsert steps.
	computed struct {
		studentID int
		gradeID   int
		totals    Totals
		rank      int
	}
)

func NewService(conf *core.Config, repo Repository, logger core.Logger, mailSvc core.EmailService) *Service {
	return &Service{
		conf:    conf,
		repo:    repo,
		log:     logger,
		mailSvc: mailSvc,
	}
}

// ComputeSemesterResults aggregates every enrolled student's scores for the
// (academic year, semester) scope, ranks survivors within their grade and
// upserts one SemesterResult per survivor. Re-running with unchanged inputs
// rewrites identical rows. A scope with no students or no gradeable exams
// completes with an empty summary; it is not an error.
func (svc *Service) ComputeSemesterResults(ctx context.Context, academicYearID, semesterID int) (RunSummary, error) {
	var summary RunSummary

	if err := validateScope(academicYearID, semesterID); err != nil {
		return summary, err
	}

	enrolled, err := svc.repo.FindEnrolledStudents(ctx, academicYearID)
	if err != nil {
		return summary, errors.Wrapf(err, "fetching enrollments (year=%d)", academicYearID)
	}
	if len(enrolled) == 0 {
		svc.log.Info("no students enrolled; nothing to compute", logCtx(academicYearID, semesterID))
		return summary, nil
	}
	summary.StudentsConsidered = len(enrolled)

	exams, err := svc.repo.FindExams(ctx, academicYearID, null.IntFrom(semesterID))
	if err != nil {
		return summary, errors.Wrapf(err, "fetching exams (year=%d, semester=%d)", academicYearID, semesterID)
	}
	if !svc.anyGradeable(exams) {
		svc.log.Info("no gradeable exams in scope; nothing to compute", logCtx(academicYearID, semesterID))
		summary.StudentsSkipped = len(enrolled)
		return summary, nil
	}

	results := make([]*computed, 0, len(enrolled))
	for _, enr := range enrolled {
		entries, err := svc.repo.FindScoreEntries(ctx, enr.StudentID, academicYearID, semesterID)
		if err != nil {
			return summary, errors.Wrapf(err, "fetching scores (student=%d)", enr.StudentID)
		}
		totals, ok := SemesterTotals(entries, svc.conf.Results.CountUnclassifiedExams)
		if !ok {
			svc.log.Info(fmt.Sprintf("student %d has no gradeable scores; skipped", enr.StudentID), logCtx(academicYearID, semesterID))
			summary.StudentsSkipped++
			continue
		}
		results = append(results, &computed{studentID: enr.StudentID, gradeID: enr.GradeID, totals: totals})
	}

	summary.GradesRanked = rankByGrade(results)

	for _, res := range results {
		sr := SemesterResult{
			StudentID:      res.studentID,
			SemesterID:     semesterID,
			AcademicYearID: academicYearID,
			TotalMarks:     res.totals.TotalMarks,
			AverageScore:   res.totals.AverageScore,
			GradeRank:      res.rank,
		}
		if _, err := svc.repo.UpsertSemesterResult(ctx, sr); err != nil {
			return summary, errors.Wrapf(err, "storing semester result (student=%d, grade=%d)", res.studentID, res.gradeID)
		}
		summary.StudentsComputed++
	}

	svc.log.Info("semester results computed", logCtx(academicYearID, semesterID), summary)
	svc.notifyRun(fmt.Sprintf("Semester results computed (year %d, semester %d)", academicYearID, semesterID), summary)
	return summary, nil
}

// ComputeYearlyResults rolls every stored semester result of the academic
// year up into one YearlyResult per student, ranked within the student's
// current grade. A year with no semester results completes with an empty
// summary; it is not an error.
func (svc *Service) ComputeYearlyResults(ctx context.Context, academicYearID int) (RunSummary, error) {
	var summary RunSummary

	if academicYearID < 1 {
		return summary, core.NewValidationError(nil, core.FieldError{Field: "academic_year_id", Error: "a valid academic year is required"})
	}

	standings, err := svc.repo.FindSemesterStandings(ctx, academicYearID)
	if err != nil {
		return summary, errors.Wrapf(err, "fetching semester standings (year=%d)", academicYearID)
	}
	if len(standings) == 0 {
		svc.log.Info("no semester results on record; nothing to compute", logCtx(academicYearID, 0))
		return summary, nil
	}

	byStudent := make(map[int][]SemesterStanding)
	gradeOf := make(map[int]int)
	for _, st := range standings {
		byStudent[st.StudentID] = append(byStudent[st.StudentID], st)
		gradeOf[st.StudentID] = st.GradeID
	}
	summary.StudentsConsidered = len(byStudent)

	studentIDs := make([]int, 0, len(byStudent))
	for id := range byStudent {
		studentIDs = append(studentIDs, id)
	}
	sort.Ints(studentIDs)

	results := make([]*computed, 0, len(byStudent))
	for _, id := range studentIDs {
		totals, ok := YearlyTotals(byStudent[id])
		if !ok {
			summary.StudentsSkipped++
			continue
		}
		results = append(results, &computed{studentID: id, gradeID: gradeOf[id], totals: totals})
	}

	summary.GradesRanked = rankByGrade(results)

	for _, res := range results {
		yr := YearlyResult{
			StudentID:      res.studentID,
			AcademicYearID: academicYearID,
			TotalMarks:     res.totals.TotalMarks,
			AverageScore:   res.totals.AverageScore,
			GradeRank:      res.rank,
		}
		if _, err := svc.repo.UpsertYearlyResult(ctx, yr); err != nil {
			return summary, errors.Wrapf(err, "storing yearly result (student=%d, grade=%d)", res.studentID, res.gradeID)
		}
		summary.StudentsComputed++
	}

	svc.log.Info("yearly results computed", logCtx(academicYearID, 0), summary)
	svc.notifyRun(fmt.Sprintf("Yearly results computed (year %d)", academicYearID), summary)
	return summary, nil
}

// ListSemesterResults returns denormalized semester results for display.
func (svc *Service) ListSemesterResults(ctx context.Context, ordering ...core.DBOrdering) ([]SemesterResultRow, error) {
	return svc.repo.QuerySemesterResults(ctx, ordering...)
}

// ListYearlyResults returns denormalized yearly results for display.
func (svc *Service) ListYearlyResults(ctx context.Context, ordering ...core.DBOrdering) ([]YearlyResultRow, error) {
	return svc.repo.QueryYearlyResults(ctx, ordering...)
}

// validateScope rejects non-positive scope ids before any store access; the
// HTTP layer validates these too, but the admin CLI and direct callers do not.
func validateScope(academicYearID, semesterID int) error {
	var flds []core.FieldError
	if academicYearID < 1 {
		flds = append(flds, core.FieldError{Field: "academic_year_id", Error: "a valid academic year is required"})
	}
	if semesterID < 1 {
		flds = append(flds, core.FieldError{Field: "semester_id", Error: "a valid semester is required"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// anyGradeable reports whether at least one exam in scope can contribute marks.
func (svc *Service) anyGradeable(exams []Exam) bool {
	for _, e := range exams {
		if e.EffectiveKind() != KindOther || svc.conf.Results.CountUnclassifiedExams {
			return true
		}
	}
	return false
}

// rankByGrade groups computed results into grade cohorts, ranks each cohort
// and writes the ranks back. It returns the number of cohorts ranked, and
// leaves results ordered grade by grade, best average first.
func rankByGrade(results []*computed) int {
	byGrade := make(map[int][]*computed)
	for _, res := range results {
		byGrade[res.gradeID] = append(byGrade[res.gradeID], res)
	}

	gradeIDs := make([]int, 0, len(byGrade))
	for id := range byGrade {
		gradeIDs = append(gradeIDs, id)
	}
	sort.Ints(gradeIDs)

	ordered := results[:0]
	for _, gradeID := range gradeIDs {
		cohort := byGrade[gradeID]
		members := make([]CohortMember, len(cohort))
		byStudent := make(map[int]*computed, len(cohort))
		for i, res := range cohort {
			members[i] = CohortMember{StudentID: res.studentID, AverageScore: res.totals.AverageScore}
			byStudent[res.studentID] = res
		}
		RankCohort(members)
		for _, m := range members {
			res := byStudent[m.StudentID]
			res.rank = m.Rank
			ordered = append(ordered, res)
		}
	}
	return len(gradeIDs)
}

// notifyRun mails the run summary to the configured recipients, if any.
func (svc *Service) notifyRun(subject string, summary RunSummary) {
	if svc.mailSvc == nil || len(svc.conf.Results.NotifyEmails) == 0 {
		return
	}
	to := make([]mail.Address, 0, len(svc.conf.Results.NotifyEmails))
	for _, addr := range svc.conf.Results.NotifyEmails {
		to = append(to, mail.Address{Address: core.CleanString(addr, true /* lower */)})
	}
	body := fmt.Sprintf(
		"Students considered: %d\nStudents computed: %d\nStudents skipped: %d\nGrades ranked: %d\n",
		summary.StudentsConsidered, summary.StudentsComputed, summary.StudentsSkipped, summary.GradesRanked,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{To: to, Subject: subject, BodyStr: body})
}

func logCtx(academicYearID, semesterID int) map[string]interface{} {
	ctx := map[string]interface{}{"academic_year_id": academicYearID}
	if semesterID != 0 {
		ctx["semester_id"] = semesterID
	}
	return ctx
}
