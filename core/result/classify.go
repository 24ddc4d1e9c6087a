package result

import "strings"

// ClassifyName derives an exam's kind from its display name, for rows whose
// kind attribute was never set. "Semester 1 Exam" is a semester exam,
// "CAT 1"/"CAT 2" are continuous assessment, anything else is unclassified.
func ClassifyName(name string) ExamKind {
	switch {
	case strings.Contains(name, "Semester"):
		return KindSemesterExam
	case strings.Contains(name, "CAT"):
		return KindCAT
	default:
		return KindOther
	}
}
