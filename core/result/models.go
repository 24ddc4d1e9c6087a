package result

import (
	"github.com/volatiletech/null/v8"
)

// ExamKind tells the aggregator how an exam's marks count towards a subject's
// semester contribution. It is set when the exam is created; rows stored
// without a kind fall back to name-based classification (see ClassifyName).
type ExamKind string

const (
	KindSemesterExam ExamKind = "semester_exam" // counts at full weight
	KindCAT          ExamKind = "cat"           // averaged with its peers
	KindOther        ExamKind = "other"         // unclassified
)

// Exam is an exam instance as recorded by the enrollment/exams layer.
// It is read-only input to the computation engine.
type Exam struct {
	ID             int      `db:"id" json:"id"`
	Name           string   `db:"name" json:"name"`
	Kind           ExamKind `db:"kind" json:"kind"`
	AcademicYearID int      `db:"academic_year_id" json:"academic_year_id"`
	SemesterID     null.Int `db:"semester_id" json:"semester_id"` // null for yearly exams
	MaxMarks       float64  `db:"max_marks" json:"max_marks"`
}

// EffectiveKind resolves the exam kind, classifying by name when the stored
// kind is absent. An explicit KindOther stands; only unset kinds fall back.
func (e Exam) EffectiveKind() ExamKind {
	if e.Kind != "" {
		return e.Kind
	}
	return ClassifyName(e.Name)
}

// ScoreEntry is one student's achieved score for one subject in one exam,
// with its exam's name, kind and maximum marks joined in.
type ScoreEntry struct {
	StudentID    int      `db:"student_id" json:"student_id"`
	SubjectID    int      `db:"subject_id" json:"subject_id"`
	ExamID       int      `db:"exam_id" json:"exam_id"`
	Marks        float64  `db:"marks" json:"marks"`
	ExamName     string   `db:"exam_name" json:"exam_name"`
	ExamKind     ExamKind `db:"exam_kind" json:"exam_kind"`
	ExamMaxMarks float64  `db:"exam_max_marks" json:"exam_max_marks"`
}

// effectiveKind resolves the entry's exam kind the same way Exam.EffectiveKind does.
func (se ScoreEntry) effectiveKind() ExamKind {
	if se.ExamKind != "" {
		return se.ExamKind
	}
	return ClassifyName(se.ExamName)
}

// Enrollment links a student to the grade they attend in an academic year.
type Enrollment struct {
	StudentID int `db:"student_id" json:"student_id"`
	GradeID   int `db:"grade_id" json:"grade_id"`
}

// SemesterResult is the computed record for (student, semester, academic year).
// Recomputation with unchanged inputs yields an identical record.
type SemesterResult struct {
	ID             int     `db:"id" json:"id"`
	StudentID      int     `db:"student_id" json:"student_id"`
	SemesterID     int     `db:"semester_id" json:"semester_id"`
	AcademicYearID int     `db:"academic_year_id" json:"academic_year_id"`
	TotalMarks     float64 `db:"total_marks" json:"total_marks"`
	AverageScore   float64 `db:"average_score" json:"average_score"` // percentage, 0-100
	GradeRank      int     `db:"grade_rank" json:"grade_rank"`
}

// YearlyResult is the computed record for (student, academic year), built
// exclusively from that student's SemesterResults for the year.
type YearlyResult struct {
	ID             int     `db:"id" json:"id"`
	StudentID      int     `db:"student_id" json:"student_id"`
	AcademicYearID int     `db:"academic_year_id" json:"academic_year_id"`
	TotalMarks     float64 `db:"total_marks" json:"total_marks"`
	AverageScore   float64 `db:"average_score" json:"average_score"`
	GradeRank      int     `db:"grade_rank" json:"grade_rank"`
}

// SemesterStanding is a stored semester result joined with the student's
// current grade; the input rows of the yearly aggregation.
type SemesterStanding struct {
	StudentID    int     `db:"student_id" json:"student_id"`
	SemesterID   int     `db:"semester_id" json:"semester_id"`
	TotalMarks   float64 `db:"total_marks" json:"total_marks"`
	AverageScore float64 `db:"average_score" json:"average_score"`
	GradeID      int     `db:"grade_id" json:"grade_id"`
}

// SemesterResultRow is a denormalized semester result for display.
type SemesterResultRow struct {
	StudentName  string  `db:"student_name" json:"student_name"`
	AdmissionNo  string  `db:"admission_no" json:"admission_no"`
	GradeName    string  `db:"grade_name" json:"grade_name"`
	YearName     string  `db:"year_name" json:"year_name"`
	SemesterName string  `db:"semester_name" json:"semester_name"`
	TotalMarks   float64 `db:"total_marks" json:"total_marks"`
	AverageScore float64 `db:"average_score" json:"average_score"`
	GradeRank    int     `db:"grade_rank" json:"grade_rank"`
}

// YearlyResultRow is a denormalized yearly result for display.
type YearlyResultRow struct {
	StudentName  string  `db:"student_name" json:"student_name"`
	AdmissionNo  string  `db:"admission_no" json:"admission_no"`
	GradeName    string  `db:"grade_name" json:"grade_name"`
	YearName     string  `db:"year_name" json:"year_name"`
	TotalMarks   float64 `db:"total_marks" json:"total_marks"`
	AverageScore float64 `db:"average_score" json:"average_score"`
	GradeRank    int     `db:"grade_rank" json:"grade_rank"`
}

// RunSummary reports what a computation run did.
type RunSummary struct {
	StudentsConsidered int `json:"students_considered"`
	StudentsComputed   int `json:"students_computed"`
	StudentsSkipped    int `json:"students_skipped"`
	GradesRanked       int `json:"grades_ranked"`
}
