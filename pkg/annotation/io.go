package annotation

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/seqgraph/seqgraph/pkg/bitvec"
	"github.com/seqgraph/seqgraph/pkg/errors"
)

// annoMagic opens every annotation matrix file.
var annoMagic = [8]byte{'s', 'e', 'q', 'g', '.', 'a', 'n', 'o'}

const annoFormatVersion = 1

// Extension returns the on-disk suffix for a layout.
func Extension(kind Kind) string {
	if kind == KindColumn {
		return ".column.annodbg"
	}
	return ".row.annodbg"
}

// Save writes the matrix to base plus the layout's suffix and returns
// the path written. A base that already carries the suffix is used as
// is. The file appears atomically.
func Save(m Matrix, base string) (string, error) {
	ext := Extension(m.Kind())
	path := strings.TrimSuffix(base, ext) + ext
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "creating %s", tmp)
	}
	w := bufio.NewWriter(f)
	if err := Write(m, w); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := w.Flush(); err == nil {
		err = f.Close()
	} else {
		f.Close()
	}
	if err != nil {
		os.Remove(tmp)
		return "", errors.Wrap(errors.ErrCodeInternal, err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", errors.Wrap(errors.ErrCodeInternal, err, "renaming %s", tmp)
	}
	return path, nil
}

// Write serializes the matrix to w.
func Write(m Matrix, w io.Writer) error {
	if _, err := w.Write(annoMagic[:]); err != nil {
		return writeErr(err)
	}
	var kindByte byte
	if m.Kind() == KindColumn {
		kindByte = 1
	}
	if _, err := w.Write([]byte{annoFormatVersion, kindByte}); err != nil {
		return writeErr(err)
	}
	if err := putU64(w, m.NumObjects()); err != nil {
		return err
	}
	labels := m.Labels()
	if err := putU64(w, uint64(len(labels))); err != nil {
		return err
	}
	for _, name := range labels {
		if err := putU32(w, uint32(len(name))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, name); err != nil {
			return writeErr(err)
		}
	}

	switch mm := m.(type) {
	case *RowMajor:
		for _, row := range mm.rows {
			if err := putU32(w, uint32(len(row))); err != nil {
				return err
			}
			for _, c := range row {
				if err := putU32(w, c); err != nil {
					return err
				}
			}
		}
	case *ColumnMajor:
		for _, col := range mm.cols {
			if _, err := col.WriteTo(w); err != nil {
				return writeErr(err)
			}
		}
	default:
		return errors.New(errors.ErrCodeInternal, "cannot serialize matrix %T", m)
	}
	return nil
}

// OpenFile loads a matrix from path. The layout is taken from the
// file header, not the file name.
func OpenFile(path string) (Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening annotation %s", path)
	}
	defer f.Close()
	m, err := Open(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "loading annotation %s", path)
	}
	return m, nil
}

// Open deserializes a matrix written by Write.
func Open(r io.Reader) (Matrix, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading header")
	}
	if magic != annoMagic {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "not an annotation matrix")
	}
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading header")
	}
	if header[0] != annoFormatVersion {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "unsupported format version %d", header[0])
	}
	if header[1] > 1 {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "unknown layout byte %d", header[1])
	}

	objects, err := getU64(r)
	if err != nil {
		return nil, err
	}
	nlabels, err := getU64(r)
	if err != nil {
		return nil, err
	}
	if objects > 1<<40 || nlabels > 1<<32 {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "implausible matrix dimensions %dx%d", objects, nlabels)
	}
	labels := make([]string, nlabels)
	for i := range labels {
		n, err := getU32(r)
		if err != nil {
			return nil, err
		}
		if n > 1<<20 {
			return nil, errors.New(errors.ErrCodeCorruptIndex, "implausible label length %d", n)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading label table")
		}
		labels[i] = string(buf)
	}

	if header[1] == 1 {
		cols := make([]*bitvec.Vector, nlabels)
		var ones uint64
		for i := range cols {
			if cols[i], err = bitvec.ReadVector(r); err != nil {
				return nil, err
			}
			if uint64(cols[i].Len()) != objects {
				return nil, errors.New(errors.ErrCodeCorruptIndex, "column %d length %d, want %d", i, cols[i].Len(), objects)
			}
			ones += uint64(cols[i].Ones())
		}
		return &ColumnMajor{labels: labels, objects: objects, cols: cols, ones: ones}, nil
	}

	rows := make([][]uint32, objects)
	var ones uint64
	for i := range rows {
		n, err := getU32(r)
		if err != nil {
			return nil, err
		}
		if uint64(n) > nlabels {
			return nil, errors.New(errors.ErrCodeCorruptIndex, "row %d has %d entries for %d labels", i, n, nlabels)
		}
		if n == 0 {
			continue
		}
		row := make([]uint32, n)
		for j := range row {
			if row[j], err = getU32(r); err != nil {
				return nil, err
			}
		}
		rows[i] = row
		ones += uint64(n)
	}
	return &RowMajor{labels: labels, rows: rows, ones: ones}, nil
}

func putU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return writeErr(err)
	}
	return nil
}

func getU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading payload")
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func putU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return writeErr(err)
	}
	return nil
}

func getU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading payload")
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeErr(err error) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "writing annotation")
}
