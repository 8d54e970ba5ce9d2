package graph

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/seqgraph/seqgraph/pkg/bitvec"
	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/kmer"
)

// dbgMagic opens every graph index file.
var dbgMagic = [8]byte{'s', 'e', 'q', 'g', '.', 'd', 'b', 'g'}

const dbgFormatVersion = 1

const (
	flagCanonical = 1 << iota
	flagBloom
)

// Index couples a graph with its optional prefilter and the identity
// stamped at build time.
type Index struct {
	Graph   DBG
	Bloom   *Bloom
	BuildID uuid.UUID
}

// Extension returns the on-disk suffix for a representation.
func Extension(tag Tag) string {
	switch tag {
	case TagBitmap:
		return ".bitmapdbg"
	case TagHash:
		return ".orhashdbg"
	case TagHashStr:
		return ".hashstrdbg"
	default:
		return ".dbg"
	}
}

// Save writes the index to base plus the representation's suffix and
// returns the path written. A base that already carries the suffix is
// used as is. The file appears atomically: a failed write leaves no
// partial output behind.
func Save(idx *Index, base string) (string, error) {
	ext := Extension(idx.Graph.Tag())
	path := strings.TrimSuffix(base, ext) + ext
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "creating %s", tmp)
	}
	w := bufio.NewWriter(f)
	if err := Write(idx, w); err != nil {
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

// Write serializes the index to w.
func Write(idx *Index, w io.Writer) error {
	if _, err := w.Write(dbgMagic[:]); err != nil {
		return wrapWriteErr(err)
	}
	var flags byte
	if idx.Graph.Canonical() {
		flags |= flagCanonical
	}
	if idx.Bloom != nil {
		flags |= flagBloom
	}
	tb, err := tagByte(idx.Graph.Tag())
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte{dbgFormatVersion, tb, flags}); err != nil {
		return wrapWriteErr(err)
	}
	if err := writeU32(w, uint32(idx.Graph.K())); err != nil {
		return err
	}
	if _, err := w.Write(idx.BuildID[:]); err != nil {
		return wrapWriteErr(err)
	}

	switch g := idx.Graph.(type) {
	case *Succinct:
		err = writeSuccinct(w, g)
	case *Bitmap:
		err = writeBitmap(w, g)
	case *Hash:
		err = writeHash(w, g)
	case *HashStr:
		err = writeHashStr(w, g)
	default:
		err = errors.New(errors.ErrCodeInternal, "cannot serialize representation %T", idx.Graph)
	}
	if err != nil {
		return err
	}

	if idx.Bloom != nil {
		if _, err := idx.Bloom.WriteTo(w); err != nil {
			return wrapWriteErr(err)
		}
	}
	return nil
}

// OpenFile loads an index from path. The representation is taken from
// the file header, not the file name.
func OpenFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening graph %s", path)
	}
	defer f.Close()
	idx, err := Open(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "loading graph %s", path)
	}
	return idx, nil
}

// Open deserializes an index written by Write.
func Open(r io.Reader) (*Index, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading header")
	}
	if magic != dbgMagic {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "not a graph index")
	}
	var header [3]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading header")
	}
	if header[0] != dbgFormatVersion {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "unsupported format version %d", header[0])
	}
	tag, err := tagFromByte(header[1])
	if err != nil {
		return nil, err
	}
	flags := header[2]
	canonical := flags&flagCanonical != 0

	k32, err := readU32(r)
	if err != nil {
		return nil, err
	}
	k := int(k32)

	idx := &Index{}
	var id [16]byte
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading build id")
	}
	idx.BuildID = uuid.UUID(id)

	switch tag {
	case TagSuccinct:
		idx.Graph, err = readSuccinct(r, k, canonical)
	case TagBitmap:
		idx.Graph, err = readBitmap(r, k, canonical)
	case TagHash:
		idx.Graph, err = readHash(r, k, canonical)
	case TagHashStr:
		idx.Graph, err = readHashStr(r, k)
	}
	if err != nil {
		return nil, err
	}

	if flags&flagBloom != 0 {
		idx.Bloom, err = ReadBloom(r)
		if err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func tagByte(tag Tag) (byte, error) {
	switch tag {
	case TagSuccinct:
		return 0, nil
	case TagBitmap:
		return 1, nil
	case TagHash:
		return 2, nil
	case TagHashStr:
		return 3, nil
	}
	return 0, errors.New(errors.ErrCodeInternal, "unknown graph type %q", tag)
}

func tagFromByte(b byte) (Tag, error) {
	switch b {
	case 0:
		return TagSuccinct, nil
	case 1:
		return TagBitmap, nil
	case 2:
		return TagHash, nil
	case 3:
		return TagHashStr, nil
	}
	return "", errors.New(errors.ErrCodeCorruptIndex, "unknown representation byte %d", b)
}

func writeSuccinct(w io.Writer, g *Succinct) error {
	if _, err := g.w.WriteTo(w); err != nil {
		return wrapWriteErr(err)
	}
	if _, err := g.last.WriteTo(w); err != nil {
		return wrapWriteErr(err)
	}
	if _, err := g.real.WriteTo(w); err != nil {
		return wrapWriteErr(err)
	}
	for _, v := range g.unflag {
		if _, err := v.WriteTo(w); err != nil {
			return wrapWriteErr(err)
		}
	}
	for _, c := range g.c {
		if err := writeU64(w, uint64(c)); err != nil {
			return err
		}
	}
	return nil
}

func readSuccinct(r io.Reader, k int, canonical bool) (*Succinct, error) {
	codec, err := kmer.NewCodec(k)
	if err != nil {
		return nil, err
	}
	g := &Succinct{codec: codec, canonical: canonical}
	if g.w, err = bitvec.ReadPacked(r); err != nil {
		return nil, err
	}
	if g.last, err = bitvec.ReadVector(r); err != nil {
		return nil, err
	}
	if g.real, err = bitvec.ReadVector(r); err != nil {
		return nil, err
	}
	for s := range g.unflag {
		if g.unflag[s], err = bitvec.ReadVector(r); err != nil {
			return nil, err
		}
	}
	for s := range g.c {
		v, err := readU64(r)
		if err != nil {
			return nil, err
		}
		g.c[s] = int(v)
	}
	g.nreal = uint64(g.real.Ones())
	return g, nil
}

func writeBitmap(w io.Writer, g *Bitmap) error {
	if _, err := g.set.WriteTo(w); err != nil {
		return wrapWriteErr(err)
	}
	return nil
}

func readBitmap(r io.Reader, k int, canonical bool) (*Bitmap, error) {
	codec, err := kmer.NewCodec(k)
	if err != nil {
		return nil, err
	}
	set, err := bitvec.ReadSparse(r)
	if err != nil {
		return nil, err
	}
	return &Bitmap{codec: codec, canonical: canonical, set: set}, nil
}

func writeHash(w io.Writer, g *Hash) error {
	if err := writeU64(w, uint64(len(g.codes))); err != nil {
		return err
	}
	for _, c := range g.codes {
		if err := writeU64(w, uint64(c)); err != nil {
			return err
		}
	}
	return nil
}

func readHash(r io.Reader, k int, canonical bool) (*Hash, error) {
	codec, err := kmer.NewCodec(k)
	if err != nil {
		return nil, err
	}
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	if n > 1<<40 {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "implausible node count %d", n)
	}
	codes := make([]kmer.Code, n)
	ids := make(map[kmer.Code]NodeID, n)
	for i := range codes {
		v, err := readU64(r)
		if err != nil {
			return nil, err
		}
		codes[i] = kmer.Code(v)
		ids[codes[i]] = NodeID(i + 1)
	}
	return &Hash{codec: codec, canonical: canonical, ids: ids, codes: codes}, nil
}

func writeHashStr(w io.Writer, g *HashStr) error {
	if err := writeU64(w, uint64(len(g.mers))); err != nil {
		return err
	}
	for _, m := range g.mers {
		if _, err := io.WriteString(w, m); err != nil {
			return wrapWriteErr(err)
		}
	}
	return nil
}

func readHashStr(r io.Reader, k int) (*HashStr, error) {
	if k < 2 || k > 1<<16 {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "implausible window length %d", k)
	}
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	if n > 1<<40 {
		return nil, errors.New(errors.ErrCodeCorruptIndex, "implausible node count %d", n)
	}
	mers := make([]string, n)
	ids := make(map[string]NodeID, n)
	buf := make([]byte, k)
	for i := range mers {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading windows")
		}
		mers[i] = string(buf)
		ids[mers[i]] = NodeID(i + 1)
	}
	return &HashStr{k: k, ids: ids, mers: mers}, nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return wrapWriteErr(err)
	}
	return nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading header")
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return wrapWriteErr(err)
	}
	return nil
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(errors.ErrCodeCorruptIndex, err, "reading payload")
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func wrapWriteErr(err error) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "writing index")
}
