package withdrawal

import (
	"errors"
	"testing"
	"time"

	"fund-ledger/internal/domain/ledgererr"
)

func pending() *Request {
	return &Request{RequestID: "rrrrrrrrrrrrrrrrrrrrrrrrrrrrrrrr", Status: StatusPending}
}

func TestStateMachine_HappyPath(t *testing.T) {
	now := time.Now().UTC()
	r := pending()
	if err := r.Approve("looks fine", "admin-1", now); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if r.Status != StatusApproved || r.AdminNotes != "looks fine" || r.ReviewedAt == nil {
		t.Fatalf("after approve: %+v", r)
	}
	if err := r.MarkProcessed(now); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if r.Status != StatusProcessed || r.ProcessedDate == nil {
		t.Fatalf("after process: %+v", r)
	}
}

func TestStateMachine_InvalidTransitions(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		name string
		from Status
		act  func(r *Request) error
	}{
		{"process pending", StatusPending, func(r *Request) error { return r.MarkProcessed(now) }},
		{"process rejected", StatusRejected, func(r *Request) error { return r.MarkProcessed(now) }},
		{"approve approved", StatusApproved, func(r *Request) error { return r.Approve("", "a", now) }},
		{"reject approved", StatusApproved, func(r *Request) error { return r.Reject("x", "a", now) }},
		{"approve processed", StatusProcessed, func(r *Request) error { return r.Approve("", "a", now) }},
		{"reject rejected", StatusRejected, func(r *Request) error { return r.Reject("x", "a", now) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := pending()
			r.Status = c.from
			before := *r
			if err := c.act(r); !errors.Is(err, ledgererr.ErrInvalidTransition) {
				t.Fatalf("want ErrInvalidTransition, got %v", err)
			}
			if r.Status != before.Status || r.ReviewedAt != nil || r.ProcessedDate != nil {
				t.Fatalf("invalid transition mutated request: %+v", r)
			}
		})
	}
}

func TestReject_RecordsReason(t *testing.T) {
	r := pending()
	if err := r.Reject("documents missing", "admin-2", time.Now()); err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusRejected || r.RejectionReason != "documents missing" || r.ReviewedBy != "admin-2" {
		t.Fatalf("after reject: %+v", r)
	}
}
