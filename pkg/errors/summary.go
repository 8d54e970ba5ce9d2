package errors

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Summary tallies recoverable per-record errors by code, so a batch
// run can skip bad records and still report what it dropped when it
// completes. The zero value is ready to use and safe for concurrent
// tallying.
type Summary struct {
	mu     sync.Mutex
	counts map[Code]uint64
	total  uint64
}

// Observe adds err to the tally under its code. Nil errors are
// ignored.
func (s *Summary) Observe(err error) {
	if err == nil {
		return
	}
	s.Add(GetCode(err), 1)
}

// Add tallies n occurrences of code.
func (s *Summary) Add(code Code, n uint64) {
	if n == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = make(map[Code]uint64)
	}
	s.counts[code] += n
	s.total += n
}

// Total returns the number of errors tallied.
func (s *Summary) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Count returns the tally for one code.
func (s *Summary) Count(code Code) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[code]
}

// String formats the tally as "CODE: n" pairs in code order, or
// "none" when nothing was tallied.
func (s *Summary) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 {
		return "none"
	}
	codes := make([]string, 0, len(s.counts))
	for code := range s.counts {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = fmt.Sprintf("%s: %d", code, s.counts[Code(code)])
	}
	return strings.Join(parts, ", ")
}
