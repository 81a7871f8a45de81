package server

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind     = "bind"
	flagDebug    = "debug"
	flagLogLevel = "log_level"
	flagMetrics  = "metrics"
)

type startArgs struct {
	bind     string
	debug    bool
	logLevel string
	metrics  string
}

func parseFlags(args []string) (startArgs, error) {
	var res startArgs
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&res.bind, flagBind, "tcp://localhost:26658", "address server listens on")
	startFlags.BoolVar(&res.debug, flagDebug, false, "call stack returned on error")
	startFlags.StringVar(&res.logLevel, flagLogLevel, "info", "minimal level of logged messages: debug, info, error or none")
	startFlags.StringVar(&res.metrics, flagMetrics, "", "address of the prometheus metrics endpoint, for example :9090 (disabled if empty)")
	if err := startFlags.Parse(args); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	return res, nil
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags.
// Metrics must be registered with reg, unless it is nil.
type AppGenerator func(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error)

// StartCmd initializes the application, and serves it over the ABCI socket
// until the process is interrupted.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}
	logger, err = filterLogger(logger, flags.logLevel)
	if err != nil {
		return err
	}

	var (
		reg     prometheus.Registerer
		metrics *http.Server
	)
	if flags.metrics != "" {
		r := prometheus.NewRegistry()
		reg = r
		metrics = &http.Server{
			Addr:    flags.metrics,
			Handler: promhttp.HandlerFor(r, promhttp.HandlerOpts{}),
		}
	}

	// Generate the app in the proper dir
	app, err := gen(home, logger, flags.debug, reg)
	if err != nil {
		return err
	}

	logger.Info("Starting ABCI app", "bind", flags.bind)
	svr, err := server.NewServer(flags.bind, "socket", app)
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}

	if metrics != nil {
		logger.Info("Serving metrics", "addr", flags.metrics)
		go func() {
			if err := metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
	}

	// Wait for a termination signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("Shutting down", "signal", s.String())

	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(ctx); err != nil {
			logger.Error("Cannot stop metrics server", "err", err)
		}
	}
	return svr.Stop()
}

// filterLogger limits the logger output to messages of at least given
// level.
func filterLogger(logger log.Logger, level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return log.NewFilter(logger, opt), nil
}
