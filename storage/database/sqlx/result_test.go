package sqlxrepos

import (
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/matokeo/core"
)

func Test_wrapErr(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantShutdown bool
	}{
		{
			name: "plain error",
			err:  errors.New("syntax error at or near"),
		},
		{
			name: "ordinary pq error",
			err:  &pq.Error{Severity: "ERROR", Message: "duplicate key value violates unique constraint"},
		},
		{
			name:         "fatal pq error",
			err:          &pq.Error{Severity: "FATAL", Message: "terminating connection due to administrator command"},
			wantShutdown: true,
		},
		{
			name:         "panic pq error",
			err:          &pq.Error{Severity: "PANIC", Message: "could not write to file"},
			wantShutdown: true,
		},
		{
			name:         "wrapped fatal pq error",
			err:          errors.Wrap(&pq.Error{Severity: "FATAL", Message: "the database system is shutting down"}, "scanning row"),
			wantShutdown: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapErr(tt.err, "upserting semester result")
			if err == nil {
				t.Fatal("wrapErr() returned nil")
			}
			if got := core.IsShutdown(err); got != tt.wantShutdown {
				t.Errorf("IsShutdown() = %v, want %v", got, tt.wantShutdown)
			}
		})
	}
}
