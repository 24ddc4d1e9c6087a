package result

import "sort"

// CohortMember is one student of a ranking cohort: all students sharing a
// grade within one computation scope.
type CohortMember struct {
	StudentID    int
	AverageScore float64
	Rank         int
}

// RankCohort assigns dense competition ranks ("1224") in place: the cohort is
// sorted by average score descending (student id ascending as a tie-break for
// stable output), tied scores share a rank, and the next distinct score takes
// its 1-based position. E.g. averages 90, 90, 80 rank 1, 1, 3.
func RankCohort(cohort []CohortMember) {
	sort.Slice(cohort, func(i, j int) bool {
		if cohort[i].AverageScore != cohort[j].AverageScore {
			return cohort[i].AverageScore > cohort[j].AverageScore
		}
		return cohort[i].StudentID < cohort[j].StudentID
	})

	currentRank := 1
	prevScore := -1.0 // sentinel; real averages are 0-100
	for i := range cohort {
		if cohort[i].AverageScore != prevScore {
			currentRank = i + 1
		}
		cohort[i].Rank = currentRank
		prevScore = cohort[i].AverageScore
	}
}
