package dummydb

import (
	"sync"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/matokeo/core/result"
)

// reference records owned by the CRUD layer; the engine consumes them by identity.
type (
	Grade struct {
		ID   int
		Name string
	}

	Subject struct {
		ID   int
		Name string
	}

	AcademicYear struct {
		ID       int
		YearName string
	}

	Semester struct {
		ID   int
		Name string
	}

	Student struct {
		ID             int
		Name           string
		AdmissionNo    string
		CurrentGradeID int
	}

	enrollmentRow struct {
		studentID      int
		academicYearID int
		gradeID        int
	}

	scoreRow struct {
		studentID int
		examID    int
		subjectID int
		marks     float64
	}

	semesterKey struct{ studentID, semesterID, academicYearID int }
	yearlyKey   struct{ studentID, academicYearID int }

	DB struct {
		sync.RWMutex

		grades    map[int]Grade
		subjects  map[int]Subject
		years     map[int]AcademicYear
		semesters map[int]Semester
		students  map[int]*Student

		enrollments []enrollmentRow
		exams       map[int]result.Exam
		scores      []scoreRow

		semesterResults map[semesterKey]*result.SemesterResult
		yearlyResults   map[yearlyKey]*result.YearlyResult

		pkCount int
	}
)

func Open() (*DB, error) {
	db := &DB{
		grades:          make(map[int]Grade),
		subjects:        make(map[int]Subject),
		years:           make(map[int]AcademicYear),
		semesters:       make(map[int]Semester),
		students:        make(map[int]*Student),
		exams:           make(map[int]result.Exam),
		semesterResults: make(map[semesterKey]*result.SemesterResult),
		yearlyResults:   make(map[yearlyKey]*result.YearlyResult),
	}
	return db, nil
}

func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

// fixture helpers; these stand in for the CRUD layer's writes.

func (db *DB) AddGrade(name string) Grade {
	db.Lock()
	defer db.Unlock()

	g := Grade{ID: db.nextPK(), Name: name}
	db.grades[g.ID] = g
	return g
}

func (db *DB) AddSubject(name string) Subject {
	db.Lock()
	defer db.Unlock()

	s := Subject{ID: db.nextPK(), Name: name}
	db.subjects[s.ID] = s
	return s
}

func (db *DB) AddAcademicYear(yearName string) AcademicYear {
	db.Lock()
	defer db.Unlock()

	ay := AcademicYear{ID: db.nextPK(), YearName: yearName}
	db.years[ay.ID] = ay
	return ay
}

func (db *DB) AddSemester(name string) Semester {
	db.Lock()
	defer db.Unlock()

	s := Semester{ID: db.nextPK(), Name: name}
	db.semesters[s.ID] = s
	return s
}

// AddStudent registers a student; a fresh admission number is generated when
// none is given.
func (db *DB) AddStudent(name string, gradeID int, admissionNo ...string) Student {
	db.Lock()
	defer db.Unlock()

	admission := uuid.New().String()
	if len(admissionNo) > 0 && admissionNo[0] != "" {
		admission = admissionNo[0]
	}
	st := &Student{ID: db.nextPK(), Name: name, AdmissionNo: admission, CurrentGradeID: gradeID}
	db.students[st.ID] = st
	return *st
}

func (db *DB) Enroll(studentID, academicYearID, gradeID int) {
	db.Lock()
	defer db.Unlock()

	for _, enr := range db.enrollments {
		if enr.studentID == studentID && enr.academicYearID == academicYearID {
			return // one enrollment per student per year
		}
	}
	db.enrollments = append(db.enrollments, enrollmentRow{studentID, academicYearID, gradeID})
}

func (db *DB) AddExam(name string, kind result.ExamKind, academicYearID int, semesterID null.Int, maxMarks float64) result.Exam {
	db.Lock()
	defer db.Unlock()

	exam := result.Exam{
		ID:             db.nextPK(),
		Name:           name,
		Kind:           kind,
		AcademicYearID: academicYearID,
		SemesterID:     semesterID,
		MaxMarks:       maxMarks,
	}
	db.exams[exam.ID] = exam
	return exam
}

// RecordScore upserts a student's marks for (exam, subject).
func (db *DB) RecordScore(studentID, examID, subjectID int, marks float64) {
	db.Lock()
	defer db.Unlock()

	for i, sc := range db.scores {
		if sc.studentID == studentID && sc.examID == examID && sc.subjectID == subjectID {
			db.scores[i].marks = marks
			return
		}
	}
	db.scores = append(db.scores, scoreRow{studentID, examID, subjectID, marks})
}
