package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestRunStatusValues(t *testing.T) {
	statuses := []RunStatus{RunCompleted, RunPartial}
	expected := []string{"completed", "partial"}
	for i, s := range statuses {
		if string(s) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], s)
		}
	}
}

func TestNewRun(t *testing.T) {
	r := NewRun("five", "blended", 4, 4)
	if r.ID == uuid.Nil {
		t.Error("expected run id to be set")
	}
	if r.StartedAt.IsZero() {
		t.Error("expected start time to be set")
	}
	if r.Status != RunCompleted {
		t.Errorf("expected status completed, got %s", r.Status)
	}
	if other := NewRun("five", "blended", 4, 4); other.ID == r.ID {
		t.Error("expected distinct run ids")
	}
}

func TestFinish(t *testing.T) {
	r := NewRun("four", "proxy_only", 1, 2)
	r.Finish()
	if r.Status != RunCompleted {
		t.Errorf("expected completed without failures, got %s", r.Status)
	}
	if r.FinishedAt.Before(r.StartedAt) {
		t.Error("finish time before start time")
	}

	r = NewRun("four", "proxy_only", 1, 2)
	r.Failures = append(r.Failures, FailureRow{Stakeholder: "DSO", Error: "matrix not reciprocal"})
	r.Finish()
	if r.Status != RunPartial {
		t.Errorf("expected partial with failures, got %s", r.Status)
	}
}
