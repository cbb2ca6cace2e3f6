// Command flux converts a vendor payload into canonical state documents
// without touching any baseline state. It is the stateless one-shot path:
// read a payload file, derive, print JSON.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/synheart/flux/go-engine/internal/engine"
	"github.com/synheart/flux/go-engine/internal/hsi"
)

// #region main

func main() {
	vendor := flag.String("vendor", "", "payload vendor: whoop, garmin, or behavior")
	inPath := flag.String("in", "", "payload file, or - for stdin")
	timezone := flag.String("tz", "UTC", "IANA timezone of the device (wearable payloads)")
	deviceID := flag.String("device", "cli", "device identifier (wearable payloads)")
	flag.Parse()

	if *vendor == "" || *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: flux --vendor whoop|garmin|behavior --in payload.json [--tz zone] [--device id]")
		os.Exit(2)
	}

	raw, err := readPayload(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read payload: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	var docs []*hsi.Document
	switch *vendor {
	case "whoop":
		docs, err = engine.ConvertWhoop(raw, *timezone, *deviceID, now)
	case "garmin":
		docs, err = engine.ConvertGarmin(raw, *timezone, *deviceID, now)
	case "behavior":
		var doc *hsi.Document
		doc, err = engine.ConvertSession(raw, now)
		if doc != nil {
			docs = []*hsi.Document{doc}
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown vendor %q\n", *vendor)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		os.Exit(1)
	}

	for i, doc := range docs {
		rendered, err := doc.MarshalIndent()
		if err != nil {
			fmt.Fprintf(os.Stderr, "render document: %v\n", err)
			os.Exit(1)
		}
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(string(rendered))
	}
}

// #endregion main

// #region helpers

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// #endregion helpers
