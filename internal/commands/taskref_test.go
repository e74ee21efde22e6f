package commands

import (
	"context"
	"errors"
	"testing"

	"taskdesk/internal/query"
	"taskdesk/internal/testutil"
)

const refID = "0b6f0c2e-6a41-4d7e-9e4f-2f1f5b8e7a10"

func TestParseTaskRef_RowNumber(t *testing.T) {
	ref, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Num != 5 || ref.ID != "" {
		t.Errorf("expected row 5, got %+v", ref)
	}
}

func TestParseTaskRef_UUID(t *testing.T) {
	ref, err := ParseTaskRef([]string{refID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != refID || ref.Num != 0 {
		t.Errorf("expected ID ref, got %+v", ref)
	}
}

func TestParseTaskRef_UUIDIsNormalized(t *testing.T) {
	ref, err := ParseTaskRef([]string{"0B6F0C2E-6A41-4D7E-9E4F-2F1F5B8E7A10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != refID {
		t.Errorf("expected lower-case ID, got %q", ref.ID)
	}
}

func TestParseTaskRef_Zero(t *testing.T) {
	_, err := ParseTaskRef([]string{"0"})
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestParseTaskRef_Invalid(t *testing.T) {
	for _, arg := range []string{"abc", "-1", "1a", "a1"} {
		_, err := ParseTaskRef([]string{arg})
		if err == nil {
			t.Errorf("%q: expected error", arg)
			continue
		}
		if want := "invalid task reference: " + arg; err.Error() != want {
			t.Errorf("%q: expected %q, got %q", arg, want, err.Error())
		}
	}
}

func TestParseTaskRef_NoArgs(t *testing.T) {
	_, err := ParseTaskRef(nil)
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_ExtraArgs(t *testing.T) {
	_, err := ParseTaskRef([]string{"1", "2"})
	if err == nil || err.Error() != "unexpected argument: 2" {
		t.Errorf("expected unexpected argument error, got %v", err)
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"0", true},
		{"123", true},
		{"12a", false},
		{" 1", false},
	}
	for _, tt := range tests {
		if got := isAllDigits(tt.in); got != tt.want {
			t.Errorf("isAllDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func testEnv(svc *testutil.FakeService) *Env {
	return &Env{Svc: svc, Query: query.NewClient()}
}

func TestResolveTask_ByRow(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "First")
	svc.AddTask("b", "Second")

	task, err := resolveTask(context.Background(), testEnv(svc), TaskRef{Num: 2}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "b" {
		t.Errorf("expected task b, got %q", task.ID)
	}
}

func TestResolveTask_RowOutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "Only")

	_, err := resolveTask(context.Background(), testEnv(svc), TaskRef{Num: 2}, 0)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestResolveTask_RowPastPageSize(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "One")
	svc.AddTask("b", "Two")

	_, err := resolveTask(context.Background(), testEnv(svc), TaskRef{Num: 2}, 1)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange with page size 1, got %v", err)
	}
}

func TestResolveTask_ByID(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(refID, "By ID")

	task, err := resolveTask(context.Background(), testEnv(svc), TaskRef{ID: refID}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != "By ID" {
		t.Errorf("expected title %q, got %q", "By ID", task.Title)
	}
	if svc.ListCalls != 0 {
		t.Errorf("ID lookup should not list, ListCalls = %d", svc.ListCalls)
	}
}

func TestResolveTask_UnknownID(t *testing.T) {
	svc := testutil.NewFakeService()

	_, err := resolveTask(context.Background(), testEnv(svc), TaskRef{ID: refID}, 0)
	if err == nil {
		t.Fatal("expected not found error")
	}
}
