package graph_test

import (
	"fmt"

	"github.com/seqgraph/seqgraph/pkg/graph"
)

func ExampleNewBuilder() {
	// Index one sequence with 5-base windows. Four distinct windows
	// occur: ACGTA, CGTAC, GTACG, TACGT.
	b, _ := graph.NewBuilder(graph.TagHash, 5, false)
	b.AddSequence([]byte("ACGTACGTAC"))
	g, _ := b.Build()

	fmt.Println("nodes:", g.NumNodes())
	fmt.Println("contains ACGTA:", g.Contains([]byte("ACGTA")))
	fmt.Println("contains AAAAA:", g.Contains([]byte("AAAAA")))
	// Output:
	// nodes: 4
	// contains ACGTA: true
	// contains AAAAA: false
}

func ExampleDBG_Neighbors() {
	// Outgoing edges connect windows overlapping in 4 bases.
	b, _ := graph.NewBuilder(graph.TagHash, 5, false)
	b.AddSequence([]byte("ACGTACGTAC"))
	g, _ := b.Build()

	for _, n := range g.Neighbors(g.Node([]byte("ACGTA"))) {
		fmt.Println("next:", string(g.NodeSeq(n)))
	}
	// Output:
	// next: CGTAC
}
