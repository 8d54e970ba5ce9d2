package errors

import (
	"sync"
	"testing"
)

func TestSummaryZeroValue(t *testing.T) {
	var s Summary

	if got := s.Total(); got != 0 {
		t.Errorf("Total() = %d, want 0", got)
	}
	if got := s.String(); got != "none" {
		t.Errorf("String() = %q, want %q", got, "none")
	}
}

func TestSummaryObserve(t *testing.T) {
	var s Summary
	s.Observe(New(ErrCodeInvalidRecord, "bad record"))
	s.Observe(New(ErrCodeInvalidRecord, "another"))
	s.Observe(New(ErrCodeMissingLabel, "no label"))
	s.Observe(nil)

	if got := s.Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
	if got := s.Count(ErrCodeInvalidRecord); got != 2 {
		t.Errorf("Count(INVALID_RECORD) = %d, want 2", got)
	}
	if got := s.Count(ErrCodeMissingLabel); got != 1 {
		t.Errorf("Count(MISSING_LABEL) = %d, want 1", got)
	}
	if got := s.Count(ErrCodeEmptyCorpus); got != 0 {
		t.Errorf("Count(EMPTY_CORPUS) = %d, want 0", got)
	}
}

func TestSummaryString(t *testing.T) {
	var s Summary
	s.Add(ErrCodeMissingLabel, 1)
	s.Add(ErrCodeInvalidRecord, 2)

	// Codes print in sorted order regardless of tally order.
	want := "INVALID_RECORD: 2, MISSING_LABEL: 1"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSummaryAddZero(t *testing.T) {
	var s Summary
	s.Add(ErrCodeInvalidRecord, 0)

	if got := s.Total(); got != 0 {
		t.Errorf("Total() = %d, want 0", got)
	}
}

func TestSummaryConcurrent(t *testing.T) {
	var s Summary
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Add(ErrCodeInvalidRecord, 1)
			}
		}()
	}
	wg.Wait()

	if got := s.Total(); got != 800 {
		t.Errorf("Total() = %d, want 800", got)
	}
}
