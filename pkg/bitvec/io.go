package bitvec

import (
	"encoding/binary"
	"io"
)

// writeUint64s writes big-endian uint64 values back to back.
func writeUint64s(w io.Writer, vals ...uint64) (int64, error) {
	var buf [8]byte
	var written int64
	for _, v := range vals {
		binary.BigEndian.PutUint64(buf[:], v)
		if _, err := w.Write(buf[:]); err != nil {
			return written, err
		}
		written += 8
	}
	return written, nil
}

// readUint64s reads n big-endian uint64 values.
func readUint64s(r io.Reader, n int) ([]uint64, error) {
	var buf [8]byte
	vals := make([]uint64, n)
	for i := range vals {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		vals[i] = binary.BigEndian.Uint64(buf[:])
	}
	return vals, nil
}
