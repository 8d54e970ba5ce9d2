// Package pkg provides the core libraries for seqgraph annotated k-mer indexes.
//
// # Overview
//
// seqgraph builds de Bruijn graph indexes over sequence corpora, attaches
// label annotations to graph nodes, and answers label queries for new
// sequences. The pkg directory is organized into five main areas:
//
//  1. [kmer] - K-mer packing, canonicalization, and window iteration
//  2. [graph] - Graph representations (succinct, bitmap, hash, hashstr)
//  3. [annotation] - Node-label matrices (row and column layouts)
//  4. [query] - Label retrieval engines and report writing
//  5. [pipeline] - Orchestration (read corpus → build graph → annotate)
//
// # Architecture
//
// The typical data flow through seqgraph:
//
//	FASTA/FASTQ corpus
//	         ↓
//	    [seqio] package (record streaming)
//	         ↓
//	    [kmer] package (2-bit codes, canonical form)
//	         ↓
//	    [graph] package (node set + traversal)
//	         ↓
//	    [annotation] package (node → labels)
//	         ↓
//	    [query] package (per-sequence label reports)
//
// # Quick Start
//
// Build a graph, annotate it, and query a sequence:
//
//	import (
//	    "context"
//	    "github.com/seqgraph/seqgraph/pkg/pipeline"
//	    "github.com/seqgraph/seqgraph/pkg/query"
//	)
//
//	// 1. Build the graph from a corpus
//	g, _, _ := pipeline.BuildGraph(context.Background(), []string{"corpus.fa"}, pipeline.Options{
//	    K:         20,
//	    GraphType: "succinct",
//	})
//
//	// 2. Annotate nodes with record headers as labels
//	m, _, _ := pipeline.BuildAnnotation(context.Background(), []string{"corpus.fa"}, g, pipeline.Options{
//	    AnnoType: "column",
//	})
//
//	// 3. Query
//	eng, _ := query.NewEngine(g, m, query.Options{})
//	labels, _ := eng.Labels([]byte("ACGTACGT..."))
//
// # Main Packages
//
// [kmer] - Fixed-length k-mer codec. Packs A/C/G/T into 2-bit codes so that
// lexicographic order equals numeric order, computes reverse complements and
// canonical forms, and splits sequences into maximal valid windows around
// unsupported symbols.
//
// [graph] - Four interchangeable de Bruijn graph representations behind one
// interface: succinct (BOSS edge-BWT), bitmap (rank over a sorted code set),
// hash (packed-code map), and hashstr (raw string map). All share the same
// persistence container and an optional Bloom membership prefilter.
//
// [bitvec] - Rank/select bit vectors and sparse code sets backing the
// succinct and bitmap representations and the column annotation layout.
//
// [annotation] - Label matrices over graph nodes. Row layout stores label
// codes per node, column layout one bit vector per label; both agree on
// counts, density, and query results. Labels are encoded in first-appearance
// order.
//
// [query] - Membership and count-label retrieval. The standard engine streams
// records one at a time; the batched engine deduplicates k-mers across a
// window of records and must produce byte-identical reports.
//
// [pipeline] - Parallel construction: corpus sharding, worker pools, and
// deterministic merging. Used by CLI and server alike.
//
// [seqio] - FASTA/FASTQ record streaming and label extraction.
//
// [render] - DOT and SVG export of graph neighborhoods for inspection.
//
// [errors] - Structured error codes shared by CLI and server.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/graph/...    # Specific package
//	go test -run Example       # Examples only
//
// [kmer]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/kmer
// [graph]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/graph
// [bitvec]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/bitvec
// [annotation]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/annotation
// [query]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/query
// [pipeline]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/pipeline
// [seqio]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/seqio
// [render]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/render
// [errors]: https://pkg.go.dev/github.com/seqgraph/seqgraph/pkg/errors
package pkg
