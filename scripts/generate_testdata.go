//go:build ignore

// generate_testdata.go creates backup files of increasing size for
// benchmarking the layout and the terminal view.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/benchmark/small.json   (100 conversations)
//	testdata/benchmark/medium.json  (500 conversations)
//	testdata/benchmark/large.json   (2000 conversations)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/mindmap/internal/datasource"
	"github.com/vanderheijden86/mindmap/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
	desc string
}

var datasets = []datasetSpec{
	{"small", 100, "100 conversations, ~3% link density"},
	{"medium", 500, "500 conversations, ~1% link density"},
	{"large", 2000, "2000 conversations, ~0.2% link density"},
}

var tagNames = []string{"work", "ideas", "home", "reading", "travel", "code"}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", outputDir, err)
		os.Exit(1)
	}

	fmt.Println("Generating benchmark datasets...")
	for _, ds := range datasets {
		fmt.Printf("  %s: %s\n", ds.name, ds.desc)

		gen := testutil.New(testutil.GeneratorConfig{Seed: 42, BookmarkRate: 0.05})
		convs, links := gen.Records(gen.Random(ds.size, density(ds.size)))
		data := testutil.Dataset{
			Conversations: convs,
			Links:         links,
			Tags:          gen.Tags(convs, tagNames, 0.3),
			Messages:      gen.Messages(convs, 4),
		}

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := datasource.WriteBackup(outputPath, data.Backup()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d links)\n", outputPath, len(links))
	}

	fmt.Println("\nDone! Datasets created in", outputDir)
}

// density scales inversely with size to keep the link count reasonable.
func density(size int) float64 {
	switch {
	case size <= 100:
		return 0.03
	case size <= 500:
		return 0.01
	default:
		return 0.002
	}
}
