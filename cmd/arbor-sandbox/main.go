// Command arbor-sandbox serves an in-memory ArborDB store over HTTP so the
// SDK can be exercised without network access to a real deployment. It
// supports seeding, artificial latency and failure injection.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arbordb/arbordb_sdk_go/pkg/arbordb/mock"
)

type failConfig struct {
	rate float64
	code int
}

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	seed := flag.String("seed", "", "path to JSON seed document")
	bearer := flag.String("bearer", "", "require this bearer token on every request")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	store := mock.New()
	if *seed != "" {
		if err := store.SeedFile(*seed); err != nil {
			logger.Fatal().Err(err).Msg("load seed")
		}
		logger.Info().Str("file", *seed).Msg("seed loaded")
	}
	if *bearer != "" {
		store.RequireBearer(*bearer)
	}

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse fail flag")
	}

	handler := withMiddleware(logger, *latency, failCfg, store.Handler())

	server := &http.Server{Addr: *addr, Handler: handler}

	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	logger.Info().Str("addr", *addr).Msg("arbor-sandbox listening")
	fmt.Println()
	fmt.Println("export ARBORDB_RUNTIME_MODE=http")
	fmt.Printf("export ARBORDB_URL=http://%s\n", host)
	fmt.Println()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func withMiddleware(logger zerolog.Logger, delay time.Duration, failCfg failConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if delay > 0 {
			time.Sleep(delay)
		}
		if failCfg.rate > 0 && rand.Float64() < failCfg.rate {
			logger.Warn().Str("method", r.Method).Str("path", r.URL.Path).
				Int("code", failCfg.code).Msg("injected failure")
			http.Error(w, `{"error":"injected failure"}`, failCfg.code)
			return
		}
		next.ServeHTTP(w, r)
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).Msg("request served")
	})
}

func parseFailConfig(raw string) (failConfig, error) {
	cfg := failConfig{code: http.StatusInternalServerError}
	if strings.TrimSpace(raw) == "" {
		return cfg, nil
	}
	for _, part := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			return cfg, fmt.Errorf("invalid fail segment %q", part)
		}
		switch key {
		case "rate":
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil || rate < 0 || rate > 1 {
				return cfg, fmt.Errorf("invalid fail rate %q", value)
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(value)
			if err != nil || code < 400 || code > 599 {
				return cfg, fmt.Errorf("invalid fail code %q", value)
			}
			cfg.code = code
		default:
			return cfg, fmt.Errorf("unknown fail option %q", key)
		}
	}
	return cfg, nil
}
