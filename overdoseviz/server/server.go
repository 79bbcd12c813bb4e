/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Binary server serves OverdoseViz.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ilhamster/overdoseviz/overdoseviz/config"
	"github.com/ilhamster/overdoseviz/overdoseviz/service"
	"github.com/ilhamster/overdoseviz/server/go/telemetry"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to configure OverdoseViz: %s", err)
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "overdoseviz")
	if err != nil {
		log.Fatalf("Failed to set up tracing: %s", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Printf("Failed to flush traces: %s", err)
		}
	}()

	service, err := service.New(ctx, cfg.DataRoot, cfg.DefaultCollection, cfg.CacheSize)
	if err != nil {
		log.Fatalf("Failed to create OverdoseViz service: %s", err)
	}

	mux := http.NewServeMux()
	service.RegisterHandlers(mux)
	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalf("Failed to get hostname: %s", err)
	}

	// Provide OSC 8 (https://en.wikipedia.org/wiki/ANSI_escape_code#OSC) link for
	// compatible terminals.
	fmt.Printf("Serving OverdoseViz at \x1B]8;;http://%[1]s:%[2]d\x07http://%[1]s:%[2]d\x1B]8;;\x07\n", hostname, cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), mux); err != nil {
		log.Printf("Server exited: %s", err)
	}
}
