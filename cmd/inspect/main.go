// Command inspect reads the engine database and prints recent documents,
// run outcomes, and baseline state for a device.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/synheart/flux/go-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to flux_engine.db")
	deviceID := flag.String("device", "", "device stream to inspect")
	last := flag.Int("last", 10, "show N most recent documents")
	runs := flag.Bool("runs", false, "show recent run log entries instead of documents")
	baselines := flag.Bool("baselines", false, "dump stored baseline state for the device")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/flux_engine.db [--device id] [--last N] [--runs] [--baselines] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *baselines:
		err = runBaselineMode(st, *deviceID)
	case *runs:
		err = runLogMode(st, *last, *jsonOut)
	default:
		err = runDocumentMode(st, *deviceID, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region document-mode

type documentRow struct {
	ID         int64  `json:"id"`
	DeviceID   string `json:"device_id"`
	Kind       string `json:"kind"`
	ObservedAt string `json:"observed_at"`
	ComputedAt string `json:"computed_at"`
}

func runDocumentMode(st *store.Store, deviceID string, last int, jsonOut bool) error {
	if deviceID == "" {
		return fmt.Errorf("document mode requires --device")
	}
	docs, err := st.RecentDocuments(deviceID, last)
	if err != nil {
		return fmt.Errorf("query documents: %w", err)
	}

	if jsonOut {
		rows := make([]documentRow, len(docs))
		for i, d := range docs {
			rows[i] = documentRow{ID: d.ID, DeviceID: d.DeviceID, Kind: d.Kind, ObservedAt: d.ObservedAt, ComputedAt: d.ComputedAt}
		}
		return printJSON(rows)
	}

	if len(docs) == 0 {
		fmt.Printf("no documents for device %s\n", deviceID)
		return nil
	}
	fmt.Printf("%-6s %-10s %-22s %-22s\n", "ID", "KIND", "OBSERVED", "COMPUTED")
	for _, d := range docs {
		fmt.Printf("%-6d %-10s %-22s %-22s\n", d.ID, d.Kind, d.ObservedAt, d.ComputedAt)
	}
	return nil
}

// #endregion document-mode

// #region run-mode

type runRow struct {
	ID        int64  `json:"id"`
	DeviceID  string `json:"device_id"`
	Operation string `json:"operation"`
	Outcome   string `json:"outcome"`
	Detail    string `json:"detail,omitempty"`
}

func runLogMode(st *store.Store, last int, jsonOut bool) error {
	entries, err := st.RecentRuns(last)
	if err != nil {
		return fmt.Errorf("query run log: %w", err)
	}

	if jsonOut {
		rows := make([]runRow, len(entries))
		for i, e := range entries {
			rows[i] = runRow{ID: e.ID, DeviceID: e.DeviceID, Operation: e.Operation, Outcome: e.Outcome, Detail: e.Detail}
		}
		return printJSON(rows)
	}

	if len(entries) == 0 {
		fmt.Println("no runs logged")
		return nil
	}
	fmt.Printf("%-6s %-20s %-18s %-8s %s\n", "ID", "DEVICE", "OPERATION", "OUTCOME", "DETAIL")
	for _, e := range entries {
		fmt.Printf("%-6d %-20s %-18s %-8s %s\n", e.ID, e.DeviceID, e.Operation, e.Outcome, e.Detail)
	}
	return nil
}

// #endregion run-mode

// #region baseline-mode

func runBaselineMode(st *store.Store, deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("baseline mode requires --device")
	}
	blob, err := st.LoadBaselines(deviceID)
	if err != nil {
		return fmt.Errorf("load baselines: %w", err)
	}
	if blob == nil {
		fmt.Printf("no baseline state for device %s\n", deviceID)
		return nil
	}
	// Stored state is already JSON, re-indent for readability.
	var v any
	if err := json.Unmarshal(blob, &v); err != nil {
		return fmt.Errorf("decode baseline state: %w", err)
	}
	return printJSON(v)
}

// #endregion baseline-mode

// #region helpers

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// #endregion helpers
