package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/query"
	"github.com/seqgraph/seqgraph/pkg/seqio"
)

// searchRequest is the JSON envelope accepted by POST /search. A plain
// FASTA body works too and runs with default options.
type searchRequest struct {
	Fasta             string  `json:"fasta"`
	CountLabels       bool    `json:"count_labels"`
	Fast              bool    `json:"fast"`
	DiscoveryFraction float64 `json:"discovery_fraction"`
	NumTopLabels      int     `json:"num_top_labels"`
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

type statsResponse struct {
	Graph      graphInfo `json:"graph"`
	Annotation annoInfo  `json:"annotation"`
}

type graphInfo struct {
	K              int    `json:"k"`
	Nodes          uint64 `json:"nodes"`
	Canonical      bool   `json:"canonical"`
	Representation string `json:"representation"`
	BuildID        string `json:"build_id,omitempty"`
}

type annoInfo struct {
	Labels         int     `json:"labels"`
	Objects        uint64  `json:"objects"`
	Density        float64 `json:"density"`
	Representation string  `json:"representation"`
}

// handleSearch answers POST /search. The full report is buffered
// before the first response byte so failures mid-run still produce a
// clean error status.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading request body"))
		return
	}

	fasta := body
	var opts query.Options
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req searchRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding request"))
			return
		}
		fasta = []byte(req.Fasta)
		opts = query.Options{
			CountLabels:       req.CountLabels,
			Fast:              req.Fast,
			DiscoveryFraction: req.DiscoveryFraction,
			NumTopLabels:      req.NumTopLabels,
		}
	}
	if len(bytes.TrimSpace(fasta)) == 0 {
		s.fail(w, errors.New(errors.ErrCodeInvalidInput, "empty query"))
		return
	}
	if err := errors.ValidateDiscoveryFraction(opts.DiscoveryFraction); err != nil {
		s.fail(w, err)
		return
	}

	corpus, cleanup, err := corpusFromBytes(fasta)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer cleanup()

	var report bytes.Buffer
	if _, err := s.engine.Run(r.Context(), corpus, &report, opts); err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(report.Bytes())
}

// handleStats answers GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	g := s.idx.Graph
	resp := statsResponse{
		Graph: graphInfo{
			K:              g.K(),
			Nodes:          g.NumNodes(),
			Canonical:      g.Canonical(),
			Representation: string(g.Tag()),
		},
		Annotation: annoInfo{
			Labels:         s.anno.NumLabels(),
			Objects:        s.anno.NumObjects(),
			Density:        s.anno.Density(),
			Representation: string(s.anno.Kind()),
		},
	}
	if s.idx.BuildID != uuid.Nil {
		resp.Graph.BuildID = s.idx.BuildID.String()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleHealth answers GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, "ok\n")
}

// fail writes err as a JSON error response with a status matching its
// code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(errors.GetCode(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSymbol,
		errors.ErrCodeInvalidRecord, errors.ErrCodeUnsupportedK:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// corpusFromBytes stages a request body as a temporary file and opens
// it as a sequence corpus. The FASTA reader works from paths, not
// buffers, so bodies take a round trip through the filesystem.
func corpusFromBytes(fasta []byte) (*seqio.Reader, func(), error) {
	f, err := os.CreateTemp("", "seqgraph-query-*.fa")
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "staging query")
	}
	path := f.Name()
	if _, err := f.Write(fasta); err != nil {
		f.Close()
		os.Remove(path)
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "staging query")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "staging query")
	}

	corpus, err := seqio.Open(path)
	if err != nil {
		os.Remove(path)
		return nil, nil, err
	}
	cleanup := func() {
		corpus.Close()
		os.Remove(path)
	}
	return corpus, cleanup, nil
}
