package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/rigpool/rigpool/pkg/logutil"
	"github.com/rigpool/rigpool/server"
)

func main() {
	cfg := server.NewConfig()
	err := cfg.Parse(os.Args[1:])
	switch errors.Cause(err) {
	case nil:
	case flag.ErrHelp:
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(2)
	}

	if err := logutil.InitLogger(&logutil.Config{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Format: cfg.LogFormat,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sc
		log.L().Info("got signal, exiting", zap.Stringer("signal", sig))
		cancel()
	}()

	srv := server.NewServer(cfg)
	log.L().Info("rigpool server starting",
		zap.String("name", cfg.Etcd.Name),
		zap.String("addr", cfg.Addr))
	if err := srv.Run(ctx); err != nil && errors.Cause(err) != context.Canceled {
		log.L().Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.L().Info("server exited")
}
