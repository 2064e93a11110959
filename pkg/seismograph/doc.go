// Package seismograph provides an embeddable ingest server for a
// seismograph that streams readings as UDP datagrams.
//
// The server acknowledges every datagram, accumulates records into batches
// and hands each full batch to a sink on its own goroutine: a file per
// batch on local disk, or one JSON POST to a backend. Delivery is best
// effort; a failed flush is logged and the batch is dropped.
//
// # Basic Usage
//
//	cfg := seismograph.Config{
//	    ServerIP:      "0.0.0.0",
//	    StorageMethod: "pipeline",
//	    BackendURL:    "backend:8080",
//	    Location:      "basement",
//	}
//
//	srv, err := seismograph.New(cfg, seismograph.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal or <-srv.Done() ...
//
//	if err := srv.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Replay
//
// With ConnectionType "test" the server replays FixturePath line by line
// instead of listening, looping forever or stopping at the end of the file
// depending on ReplayOnExhaust. When it stops on its own the server drains
// in-flight flushes, moves to [StateStopped] and closes [Server.Done].
//
// # Batching
//
// A batch is flushed once it holds more than MaxSamples records, so the
// default threshold of 100 produces batches of 101. Records still pending
// when the server stops are discarded.
//
// # Lifecycle States
//
// A Server can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Use [Server.Status] to
// query the current state.
package seismograph
