package dummydb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/matokeo/core"
	"github.com/trezcool/matokeo/core/result"
)

type resultRepository struct {
	db *DB
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *DB) result.Repository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) FindExams(_ context.Context, academicYearID int, semesterID null.Int) ([]result.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exams := make([]result.Exam, 0)
	for _, exam := range repo.db.exams {
		if exam.AcademicYearID != academicYearID {
			continue
		}
		if exam.SemesterID.Valid != semesterID.Valid || exam.SemesterID.Int != semesterID.Int {
			continue
		}
		exams = append(exams, exam)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return exams, nil
}

func (repo *resultRepository) FindScoreEntries(_ context.Context, studentID, academicYearID, semesterID int) ([]result.ScoreEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]result.ScoreEntry, 0)
	for _, sc := range repo.db.scores {
		if sc.studentID != studentID {
			continue
		}
		exam, ok := repo.db.exams[sc.examID]
		if !ok || exam.AcademicYearID != academicYearID {
			continue
		}
		if !exam.SemesterID.Valid || exam.SemesterID.Int != semesterID {
			continue
		}
		entries = append(entries, result.ScoreEntry{
			StudentID:    sc.studentID,
			SubjectID:    sc.subjectID,
			ExamID:       sc.examID,
			Marks:        sc.marks,
			ExamName:     exam.Name,
			ExamKind:     exam.Kind,
			ExamMaxMarks: exam.MaxMarks,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SubjectID != entries[j].SubjectID {
			return entries[i].SubjectID < entries[j].SubjectID
		}
		return entries[i].ExamID < entries[j].ExamID
	})
	return entries, nil
}

func (repo *resultRepository) FindEnrolledStudents(_ context.Context, academicYearID int) ([]result.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]result.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.academicYearID != academicYearID {
			continue
		}
		st, ok := repo.db.students[enr.studentID]
		if !ok {
			continue
		}
		enrollments = append(enrollments, result.Enrollment{StudentID: st.ID, GradeID: st.CurrentGradeID})
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].StudentID < enrollments[j].StudentID })
	return enrollments, nil
}

func (repo *resultRepository) FindSemesterStandings(_ context.Context, academicYearID int) ([]result.SemesterStanding, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	standings := make([]result.SemesterStanding, 0)
	for _, sr := range repo.db.semesterResults {
		if sr.AcademicYearID != academicYearID {
			continue
		}
		st, ok := repo.db.students[sr.StudentID]
		if !ok {
			continue
		}
		standings = append(standings, result.SemesterStanding{
			StudentID:    sr.StudentID,
			SemesterID:   sr.SemesterID,
			TotalMarks:   sr.TotalMarks,
			AverageScore: sr.AverageScore,
			GradeID:      st.CurrentGradeID,
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].StudentID != standings[j].StudentID {
			return standings[i].StudentID < standings[j].StudentID
		}
		return standings[i].SemesterID < standings[j].SemesterID
	})
	return standings, nil
}

func (repo *resultRepository) UpsertSemesterResult(_ context.Context, res result.SemesterResult) (result.SemesterResult, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := semesterKey{res.StudentID, res.SemesterID, res.AcademicYearID}
	if existing, ok := repo.db.semesterResults[key]; ok {
		existing.TotalMarks = res.TotalMarks
		existing.AverageScore = res.AverageScore
		existing.GradeRank = res.GradeRank
		return *existing, nil
	}
	res.ID = repo.db.nextPK()
	repo.db.semesterResults[key] = &res
	return res, nil
}

func (repo *resultRepository) UpsertYearlyResult(_ context.Context, res result.YearlyResult) (result.YearlyResult, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := yearlyKey{res.StudentID, res.AcademicYearID}
	if existing, ok := repo.db.yearlyResults[key]; ok {
		existing.TotalMarks = res.TotalMarks
		existing.AverageScore = res.AverageScore
		existing.GradeRank = res.GradeRank
		return *existing, nil
	}
	res.ID = repo.db.nextPK()
	repo.db.yearlyResults[key] = &res
	return res, nil
}

func (repo *resultRepository) QuerySemesterResults(_ context.Context, ordering ...core.DBOrdering) ([]result.SemesterResultRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]result.SemesterResultRow, 0, len(repo.db.semesterResults))
	for _, sr := range repo.db.semesterResults {
		st, ok := repo.db.students[sr.StudentID]
		if !ok {
			continue
		}
		rows = append(rows, result.SemesterResultRow{
			StudentName:  st.Name,
			AdmissionNo:  st.AdmissionNo,
			GradeName:    repo.db.grades[st.CurrentGradeID].Name,
			YearName:     repo.db.years[sr.AcademicYearID].YearName,
			SemesterName: repo.db.semesters[sr.SemesterID].Name,
			TotalMarks:   sr.TotalMarks,
			AverageScore: sr.AverageScore,
			GradeRank:    sr.GradeRank,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return semesterRowLess(rows[i], rows[j], ordering) })
	return rows, nil
}

func (repo *resultRepository) QueryYearlyResults(_ context.Context, ordering ...core.DBOrdering) ([]result.YearlyResultRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]result.YearlyResultRow, 0, len(repo.db.yearlyResults))
	for _, yr := range repo.db.yearlyResults {
		st, ok := repo.db.students[yr.StudentID]
		if !ok {
			continue
		}
		rows = append(rows, result.YearlyResultRow{
			StudentName:  st.Name,
			AdmissionNo:  st.AdmissionNo,
			GradeName:    repo.db.grades[st.CurrentGradeID].Name,
			YearName:     repo.db.years[yr.AcademicYearID].YearName,
			TotalMarks:   yr.TotalMarks,
			AverageScore: yr.AverageScore,
			GradeRank:    yr.GradeRank,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return yearlyRowLess(rows[i], rows[j], ordering) })
	return rows, nil
}

func semesterRowLess(a, b result.SemesterResultRow, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var av, bv interface{}
		switch ord.Field {
		case "student_name":
			av, bv = a.StudentName, b.StudentName
		case "grade_name":
			av, bv = a.GradeName, b.GradeName
		case "semester_name":
			av, bv = a.SemesterName, b.SemesterName
		case "total_marks":
			av, bv = a.TotalMarks, b.TotalMarks
		case "average_score":
			av, bv = a.AverageScore, b.AverageScore
		case "grade_rank":
			av, bv = a.GradeRank, b.GradeRank
		default:
			continue
		}
		if less, eq := compare(av, bv, ord.Ascending); !eq {
			return less
		}
	}
	// default: year, semester, grade, rank, name
	if a.YearName != b.YearName {
		return a.YearName < b.YearName
	}
	if a.SemesterName != b.SemesterName {
		return a.SemesterName < b.SemesterName
	}
	if a.GradeName != b.GradeName {
		return a.GradeName < b.GradeName
	}
	if a.GradeRank != b.GradeRank {
		return a.GradeRank < b.GradeRank
	}
	return a.StudentName < b.StudentName
}

func yearlyRowLess(a, b result.YearlyResultRow, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var av, bv interface{}
		switch ord.Field {
		case "student_name":
			av, bv = a.StudentName, b.StudentName
		case "grade_name":
			av, bv = a.GradeName, b.GradeName
		case "total_marks":
			av, bv = a.TotalMarks, b.TotalMarks
		case "average_score":
			av, bv = a.AverageScore, b.AverageScore
		case "grade_rank":
			av, bv = a.GradeRank, b.GradeRank
		default:
			continue
		}
		if less, eq := compare(av, bv, ord.Ascending); !eq {
			return less
		}
	}
	if a.YearName != b.YearName {
		return a.YearName < b.YearName
	}
	if a.GradeName != b.GradeName {
		return a.GradeName < b.GradeName
	}
	if a.GradeRank != b.GradeRank {
		return a.GradeRank < b.GradeRank
	}
	return a.StudentName < b.StudentName
}

func compare(a, b interface{}, ascending bool) (less, eq bool) {
	switch av := a.(type) {
	case string:
		bv := b.(string)
		if av == bv {
			return false, true
		}
		return (av < bv) == ascending, false
	case int:
		bv := b.(int)
		if av == bv {
			return false, true
		}
		return (av < bv) == ascending, false
	case float64:
		bv := b.(float64)
		if av == bv {
			return false, true
		}
		return (av < bv) == ascending, false
	}
	return false, true
}
