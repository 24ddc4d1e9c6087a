package result

import "testing"

func TestClassifyName(t *testing.T) {
	tests := []struct {
		name string
		want ExamKind
	}{
		{name: "End of Semester 1 Exam", want: KindSemesterExam},
		{name: "Semester 2 Final", want: KindSemesterExam},
		{name: "CAT 1", want: KindCAT},
		{name: "Math CAT", want: KindCAT},
		{name: "Semester 1 CAT", want: KindSemesterExam}, // semester label wins over the CAT label
		{name: "Mock Test", want: KindOther},
		{name: "semester 1 exam", want: KindOther}, // matching is case sensitive
		{name: "", want: KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyName(tt.name); got != tt.want {
				t.Errorf("ClassifyName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
