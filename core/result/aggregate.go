package result

// Totals is a student's aggregated semester (or yearly) outcome. Counted
// holds the number of contributing subjects (semester scope) or semesters
// (yearly scope).
type Totals struct {
	TotalMarks   float64
	AverageScore float64 // percentage, 0-100
	Counted      int
}

// subjectContribution folds one subject's score entries into an
// (achieved, possible) pair:
//   - the semester exam counts at full weight; when several semester-exam
//     entries exist for the subject, the earliest exam wins
//   - CAT marks are averaged, as are their maximums
//   - unclassified exams contribute nothing unless countUnclassified is set,
//     in which case they count at full weight
//
// A subject with possible == 0 carries no recorded exams and is excluded.
func subjectContribution(entries []ScoreEntry, countUnclassified bool) (achieved, possible float64) {
	var (
		semScore, semMax     float64
		semExamID            int
		catScores, catMaxSum float64
		catCount             int
	)

	for _, se := range entries {
		switch se.effectiveKind() {
		case KindSemesterExam:
			if semExamID == 0 || se.ExamID < semExamID {
				semScore, semMax = se.Marks, se.ExamMaxMarks
				semExamID = se.ExamID
			}
		case KindCAT:
			catScores += se.Marks
			catMaxSum += se.ExamMaxMarks
			catCount++
		default:
			if countUnclassified {
				achieved += se.Marks
				possible += se.ExamMaxMarks
			}
		}
	}

	achieved += semScore
	possible += semMax
	if catCount > 0 {
		achieved += catScores / float64(catCount)
		possible += catMaxSum / float64(catCount)
	}
	return achieved, possible
}

// SemesterTotals aggregates all of a student's score entries for one
// (academic year, semester) scope into semester totals. ok is false when no
// subject contributed; such a student is skipped entirely by the caller.
func SemesterTotals(entries []ScoreEntry, countUnclassified bool) (tot Totals, ok bool) {
	bySubject := make(map[int][]ScoreEntry)
	for _, se := range entries {
		bySubject[se.SubjectID] = append(bySubject[se.SubjectID], se)
	}

	var totalAchieved, totalPossible float64
	for _, subjEntries := range bySubject {
		achieved, possible := subjectContribution(subjEntries, countUnclassified)
		if possible > 0 {
			totalAchieved += achieved
			totalPossible += possible
			tot.Counted++
		}
	}
	if tot.Counted == 0 {
		return Totals{}, false
	}

	tot.TotalMarks = totalAchieved
	tot.AverageScore = totalAchieved / totalPossible * 100
	return tot, true
}

// YearlyTotals rolls a student's stored semester standings up into a yearly
// outcome: total marks are summed, the average is the mean of the semester
// averages (not a recomputation from raw scores).
func YearlyTotals(standings []SemesterStanding) (tot Totals, ok bool) {
	if len(standings) == 0 {
		return Totals{}, false
	}
	var avgSum float64
	for _, st := range standings {
		tot.TotalMarks += st.TotalMarks
		avgSum += st.AverageScore
	}
	tot.AverageScore = avgSum / float64(len(standings))
	tot.Counted = len(standings)
	return tot, true
}
