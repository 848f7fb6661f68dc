package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"minihttpd/httpd"
)

func main() {
	var (
		dir      string
		addr     string
		workers  int
		logLevel string
	)
	flag.StringVar(&dir, "directory", os.Getenv("MINIHTTPD_DIRECTORY"), "Directory served under /files/")
	flag.StringVar(&addr, "addr", httpd.DefaultAddr, "Listen address")
	flag.IntVar(&workers, "workers", httpd.DefaultWorkers, "Number of workers")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Fatalf("invalid log level %q: %v", logLevel, err)
	}
	log.SetLevel(level)

	if workers <= 0 {
		log.Fatalf("invalid worker count %d: must be a positive integer", workers)
	}
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			log.WithError(err).Warnf("directory %s is not accessible", dir)
		}
	}

	svr := &httpd.Server{
		Addr:    addr,
		Dir:     dir,
		Workers: workers,
		Logger:  log,
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		s := <-sig
		log.WithField("signal", s.String()).Info("shutting down")
		if err := svr.Close(); err != nil {
			log.WithError(err).Warn("close listener")
		}
	}()

	if err := svr.ListenAndServe(); !errors.Is(err, httpd.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}
	// Close is still waiting for queued connections
	<-drained
	log.Info("server stopped")
}
