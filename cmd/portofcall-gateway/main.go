/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command portofcall-gateway is the HTTP front end for the probing
// engine: it loads a GatewayConfig, builds the handler-adaptor mux
// under internal/api, and serves it until told to stop.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rossgg/portofcall/config"
	"github.com/rossgg/portofcall/internal/api"
	"github.com/rossgg/portofcall/ingest/log"
	"github.com/rossgg/portofcall/utils"
	"github.com/rossgg/portofcall/version"
)

// fileConfig is the gcfg section wrapper LoadConfigFile expects; a
// config file carries its settings under a single [Global] section.
type fileConfig struct {
	Global config.GatewayConfig
}

func main() {
	var (
		configPath  = flag.String("config", ``, "path to a gateway config file (optional; environment variables and defaults apply otherwise)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		version.PrintVersion(os.Stdout)
		return
	}

	var gc config.GatewayConfig
	if *configPath != `` {
		var fc fileConfig
		if err := config.LoadConfigFile(&fc, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config file %q: %v\n", *configPath, err)
			os.Exit(1)
		}
		gc = fc.Global
	}
	if err := gc.Verify(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	lg, err := newLogger(gc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Close()
	if err := lg.SetLevelString(gc.Log_Level); err != nil {
		lg.Fatal("invalid log level", log.KV("level", gc.Log_Level), log.KVErr(err))
	}

	srv := api.NewServer(&gc, lg)
	httpSrv := &http.Server{
		Addr:    gc.Bind_Address,
		Handler: srv.Mux(),
	}

	quit := utils.GetQuitChannel()
	serveErr := make(chan error, 1)
	go func() {
		lg.Info("starting portofcall-gateway", log.KV("bind", gc.Bind_Address), log.KV("tls", gc.TLSEnabled()))
		if gc.TLSEnabled() {
			httpSrv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			serveErr <- httpSrv.ListenAndServeTLS(gc.TLS_Cert, gc.TLS_Key)
		} else {
			serveErr <- httpSrv.ListenAndServe()
		}
	}()

	select {
	case sig := <-quit:
		lg.Info("received shutdown signal", log.KV("signal", sig.String()))
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("server exited unexpectedly", log.KVErr(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		lg.Error("graceful shutdown failed", log.KVErr(err))
	}
	lg.Info("portofcall-gateway stopped")
}

// newLogger builds the gateway's logger from the loaded config: a file
// at Log_File if one is set, otherwise stderr.
func newLogger(gc config.GatewayConfig) (*log.Logger, error) {
	if gc.Log_File != `` {
		return log.NewFile(gc.Log_File)
	}
	return log.NewStderrLogger(``)
}
