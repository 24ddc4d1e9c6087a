package result

import (
	"sort"
	"testing"
)

func TestRankCohort(t *testing.T) {
	tests := []struct {
		name      string
		cohort    []CohortMember
		wantOrder []int // student IDs in expected output order
		wantRanks []int
	}{
		{
			name: "distinct scores",
			cohort: []CohortMember{
				{StudentID: 1, AverageScore: 70},
				{StudentID: 2, AverageScore: 90},
				{StudentID: 3, AverageScore: 80},
			},
			wantOrder: []int{2, 3, 1},
			wantRanks: []int{1, 2, 3},
		},
		{
			name: "tied scores share a rank and the next rank jumps",
			cohort: []CohortMember{
				{StudentID: 1, AverageScore: 90},
				{StudentID: 2, AverageScore: 90},
				{StudentID: 3, AverageScore: 80},
			},
			wantOrder: []int{1, 2, 3},
			wantRanks: []int{1, 1, 3},
		},
		{
			name: "all tied",
			cohort: []CohortMember{
				{StudentID: 3, AverageScore: 50},
				{StudentID: 1, AverageScore: 50},
				{StudentID: 2, AverageScore: 50},
			},
			wantOrder: []int{1, 2, 3},
			wantRanks: []int{1, 1, 1},
		},
		{
			name: "mid-list tie",
			cohort: []CohortMember{
				{StudentID: 1, AverageScore: 95},
				{StudentID: 2, AverageScore: 85},
				{StudentID: 3, AverageScore: 85},
				{StudentID: 4, AverageScore: 60},
			},
			wantOrder: []int{1, 2, 3, 4},
			wantRanks: []int{1, 2, 2, 4},
		},
		{
			name:      "single student",
			cohort:    []CohortMember{{StudentID: 7, AverageScore: 42}},
			wantOrder: []int{7},
			wantRanks: []int{1},
		},
		{
			name:   "empty cohort",
			cohort: []CohortMember{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RankCohort(tt.cohort)

			if len(tt.cohort) != len(tt.wantOrder) {
				t.Fatalf("RankCohort() len = %d, want %d", len(tt.cohort), len(tt.wantOrder))
			}
			for i, m := range tt.cohort {
				if m.StudentID != tt.wantOrder[i] {
					t.Errorf("RankCohort() order[%d] = student %d, want %d", i, m.StudentID, tt.wantOrder[i])
				}
				if m.Rank != tt.wantRanks[i] {
					t.Errorf("RankCohort() rank[%d] = %d, want %d", i, m.Rank, tt.wantRanks[i])
				}
			}
		})
	}
}

func TestRankCohort_monotonicAndDense(t *testing.T) {
	cohort := []CohortMember{
		{StudentID: 1, AverageScore: 77.5},
		{StudentID: 2, AverageScore: 91},
		{StudentID: 3, AverageScore: 77.5},
		{StudentID: 4, AverageScore: 91},
		{StudentID: 5, AverageScore: 30},
		{StudentID: 6, AverageScore: 64.2},
	}
	RankCohort(cohort)

	// monotonic: a strictly better average never ranks worse; equal averages share ranks
	for i := range cohort {
		for j := range cohort {
			a, b := cohort[i], cohort[j]
			if a.AverageScore > b.AverageScore && a.Rank > b.Rank {
				t.Errorf("student %d (avg %.1f, rank %d) outranked by student %d (avg %.1f, rank %d)",
					a.StudentID, a.AverageScore, a.Rank, b.StudentID, b.AverageScore, b.Rank)
			}
			if a.AverageScore == b.AverageScore && a.Rank != b.Rank {
				t.Errorf("tied students %d and %d got ranks %d and %d", a.StudentID, b.StudentID, a.Rank, b.Rank)
			}
		}
	}

	// dense: used ranks are exactly the 1-based first positions of each distinct score
	wantRanks := make(map[int]bool)
	prev := -1.0
	for i, m := range cohort {
		if m.AverageScore != prev {
			wantRanks[i+1] = true
		}
		prev = m.AverageScore
	}
	gotRanks := make(map[int]bool)
	for _, m := range cohort {
		gotRanks[m.Rank] = true
	}
	if len(gotRanks) != len(wantRanks) {
		t.Fatalf("rank set = %v, want %v", keys(gotRanks), keys(wantRanks))
	}
	for r := range wantRanks {
		if !gotRanks[r] {
			t.Errorf("missing rank %d in %v", r, keys(gotRanks))
		}
	}
}

func keys(m map[int]bool) []int {
	ks := make([]int, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}
