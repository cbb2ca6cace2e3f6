// Command replay runs a recorded fixture through a fresh processor and
// checks the results against the fixture's expectations. Exit code 1
// means a mismatch, 2 means the fixture itself could not be replayed.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/synheart/flux/go-engine/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("v", false, "print per-step results")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [-v]")
		os.Exit(2)
	}
	os.Exit(runFixture(*fixturePath, *verbose))
}

// #endregion main

// #region fixture-mode

func runFixture(path string, verbose bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, summary, err := replay.Run(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if verbose {
		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("[%d] %-10s error=%s (%v)\n", r.Index, r.Kind, replay.ErrorKind(r.Err), r.Err)
				continue
			}
			fmt.Printf("[%d] %-10s documents=%d\n", r.Index, r.Kind, len(r.Documents))
		}
	}

	fmt.Printf("replayed %d steps: %d documents, %d errors\n", summary.Steps, summary.Documents, summary.Errors)

	mismatches := replay.Verify(results, f.Expected)
	if len(mismatches) == 0 {
		fmt.Println("all expectations match")
		return 0
	}
	for _, m := range mismatches {
		fmt.Fprintf(os.Stderr, "mismatch: %s\n", m)
	}
	return 1
}

// #endregion fixture-mode
