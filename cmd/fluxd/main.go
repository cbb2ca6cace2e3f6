// Command fluxd runs the signal derivation engine as a gRPC daemon. It
// serves the flux.Engine service for a single device stream, restoring
// baseline state from the local database on startup and persisting
// derived documents as they are produced.
package main

import (
	"flag"
	"log"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"

	"github.com/synheart/flux/go-engine/internal/engine"
	"github.com/synheart/flux/go-engine/internal/rpc"
	"github.com/synheart/flux/go-engine/internal/store"
)

// #region main

func main() {
	addr := flag.String("addr", envOr("FLUX_ADDR", "localhost:50061"), "listen address for the gRPC service")
	dbPath := flag.String("db", envOr("FLUX_DB", "flux_engine.db"), "path to the engine database")
	deviceID := flag.String("device", envOr("FLUX_DEVICE", ""), "device stream to restore baselines for")
	halfLife := flag.Duration("half-life", 12*time.Hour, "bio context decay half-life")
	flag.Parse()

	st, err := store.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	config := engine.DefaultConfig()
	config.HalfLife = *halfLife
	processor := engine.NewProcessor(config)

	if *deviceID != "" {
		blob, err := st.LoadBaselines(*deviceID)
		if err != nil {
			log.Fatalf("failed to load baselines for %s: %v", *deviceID, err)
		}
		if blob != nil {
			if err := processor.LoadBaselines(blob); err != nil {
				log.Fatalf("failed to restore baselines for %s: %v", *deviceID, err)
			}
			log.Printf("restored baselines for device %s", *deviceID)
		} else {
			log.Printf("no stored baselines for device %s, starting fresh", *deviceID)
		}
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", *addr, err)
	}

	grpcServer := grpc.NewServer()
	rpc.RegisterEngineServer(grpcServer, rpc.NewServer(processor, st))

	log.Printf("flux engine ready")
	log.Printf("  addr: %s | db: %s", *addr, *dbPath)
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
