package annotation_test

import (
	"fmt"

	"github.com/seqgraph/seqgraph/pkg/annotation"
)

func ExampleBuilder() {
	// Annotate four graph nodes with two sample labels. Label codes
	// follow first appearance.
	b := annotation.NewBuilder(annotation.KindRow, 4)
	s1 := b.EncodeLabel("sample1")
	s2 := b.EncodeLabel("sample2")
	b.Add(0, s1)
	b.Add(0, s2)
	b.Add(3, s2)
	m := b.Build()

	fmt.Println("labels:", m.NumLabels())
	fmt.Println("objects:", m.NumObjects())
	fmt.Println("node 0:", m.LabelsOf(0))
	fmt.Printf("density: %e\n", m.Density())
	// Output:
	// labels: 2
	// objects: 4
	// node 0: [sample1 sample2]
	// density: 3.750000e-01
}
