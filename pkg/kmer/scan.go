package kmer

// CodeScanner walks a sequence and yields the packed code of every
// valid k-length window, advancing one base at a time. A character
// outside the alphabet resets the window, so no window spanning it is
// ever produced.
type CodeScanner struct {
	codec  *Codec
	seq    []byte
	pos    int
	cur    Code
	filled int
}

// Scan returns a scanner over seq.
func (c *Codec) Scan(seq []byte) *CodeScanner {
	return &CodeScanner{codec: c, seq: seq}
}

// Next returns the next window code. The second result is false once
// the sequence is exhausted.
func (s *CodeScanner) Next() (Code, bool) {
	k := s.codec.k
	for s.pos < len(s.seq) {
		bc := baseCodes[s.seq[s.pos]]
		s.pos++
		if bc == 0xFF {
			s.filled = 0
			continue
		}
		s.cur = (s.cur<<2 | Code(bc)) & s.codec.mask
		if s.filled++; s.filled >= k {
			s.filled = k
			return s.cur, true
		}
	}
	return 0, false
}

// Windows walks a sequence and yields the start offset of every valid
// k-length window, for representations that index raw strings and
// are therefore not bound by the packed length limit.
type Windows struct {
	seq []byte
	k   int
	pos int
	run int
}

// ScanWindows returns a window iterator over seq for windows of
// length k.
func ScanWindows(seq []byte, k int) *Windows {
	return &Windows{seq: seq, k: k}
}

// Next returns the start offset of the next valid window. The second
// result is false once the sequence is exhausted.
func (w *Windows) Next() (int, bool) {
	for w.pos < len(w.seq) {
		if !ValidBase(w.seq[w.pos]) {
			w.pos++
			w.run = 0
			continue
		}
		w.pos++
		if w.run++; w.run >= w.k {
			w.run = w.k
			return w.pos - w.k, true
		}
	}
	return -1, false
}
