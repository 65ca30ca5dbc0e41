// ndikit is the demo binary for the adaptation layer: it can scan the
// network for sources (find), receive and log frames from one source
// (monitor), advertise a test-pattern source (beacon), or run a beacon and
// a monitor against each other in-process (demo). A small HTTPS endpoint
// reports discovered sources and session counters.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kvasirlabs/ndikit"
	"github.com/kvasirlabs/ndikit/certs"
	"github.com/kvasirlabs/ndikit/discovery"
	"github.com/kvasirlabs/ndikit/engine"
	"github.com/kvasirlabs/ndikit/engine/loopback"
	ndieng "github.com/kvasirlabs/ndikit/engine/ndi"
	"github.com/kvasirlabs/ndikit/media"
	"github.com/kvasirlabs/ndikit/recv"
	"github.com/kvasirlabs/ndikit/send"
)

func main() {
	configPath := flag.String("config", "ndikit.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.slogLevel(),
	})))

	eng, engineName := selectEngine(cfg)
	slog.Info("ndikit starting",
		"version", ndikit.Version, "mode", cfg.Mode, "engine", engineName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	st := &status{mode: cfg.Mode, engine: engineName}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.StatusAddr != "" {
		cert, err := certs.Generate(0)
		if err != nil {
			slog.Error("failed to generate status cert", "error", err)
			os.Exit(1)
		}
		srv := &http.Server{
			Addr:    cfg.StatusAddr,
			Handler: st.handler(),
			TLSConfig: &tls.Config{
				Certificates: []tls.Certificate{cert.TLSCert},
			},
		}
		g.Go(func() error {
			slog.Info("status endpoint listening",
				"addr", cfg.StatusAddr, "fingerprint", cert.FingerprintBase64())
			if err := srv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	switch cfg.Mode {
	case "find":
		g.Go(func() error { return runFind(ctx, cfg, eng, st) })
	case "monitor":
		g.Go(func() error { return runMonitor(ctx, cfg, eng, st, cfg.Source) })
	case "beacon":
		g.Go(func() error { return runBeacon(ctx, cfg, eng, st) })
	case "demo":
		// Demo pairs a beacon and a monitor through the in-process engine
		// regardless of the configured one.
		demoEng := loopback.New()
		st.engine = "loopback"
		g.Go(func() error { return runBeacon(ctx, cfg, demoEng, st) })
		g.Go(func() error { return runMonitor(ctx, cfg, demoEng, st, cfg.Name) })
	}

	if err := g.Wait(); err != nil {
		slog.Error("exiting with error", "error", err)
		os.Exit(1)
	}
}

// selectEngine picks the native engine when it is available and requested,
// falling back to the in-process one.
func selectEngine(cfg *Config) (engine.Engine, string) {
	if cfg.Engine == "loopback" {
		return loopback.New(), "loopback"
	}
	native, err := ndieng.New()
	if err == nil {
		return native, "ndi"
	}
	if cfg.Engine == "ndi" {
		slog.Error("native engine unavailable", "error", err)
		os.Exit(1)
	}
	slog.Info("native engine unavailable, using loopback", "error", err)
	return loopback.New(), "loopback"
}

// runFind polls discovery and publishes each snapshot.
func runFind(ctx context.Context, cfg *Config, eng engine.Engine, st *status) error {
	reg, err := discovery.New(eng, nil)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	defer reg.Close()

	for ctx.Err() == nil {
		sources, err := reg.Find(time.Duration(cfg.ScanTimeoutMS) * time.Millisecond)
		if err != nil {
			return fmt.Errorf("find: %w", err)
		}
		st.setSources(sources)
		for _, src := range sources {
			slog.Info("source", "name", src.Name, "address", src.Address)
		}
		if len(sources) == 0 {
			slog.Info("no sources on the network")
		}
	}
	return nil
}

// runMonitor connects to target and logs every captured unit until the
// context ends. Connect retries while the source has not announced yet.
func runMonitor(ctx context.Context, cfg *Config, eng engine.Engine, st *status, target string) error {
	sess, err := recv.New(eng,
		recv.WithScanTimeout(time.Duration(cfg.ScanTimeoutMS)*time.Millisecond))
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	defer sess.Close()
	st.setReceive(sess)

	for ctx.Err() == nil {
		err := sess.Connect(target)
		if err == nil {
			break
		}
		if errors.Is(err, recv.ErrSourceNotFound) || errors.Is(err, recv.ErrDiscoveryTimeout) {
			slog.Info("source not announced yet, retrying", "source", target)
			continue
		}
		return fmt.Errorf("monitor: %w", err)
	}

	captureTimeout := time.Duration(cfg.CaptureTimeoutMS) * time.Millisecond
	for ctx.Err() == nil {
		unit, err := sess.Capture(captureTimeout)
		if err != nil {
			slog.Warn("capture failed, retrying", "error", err)
			continue
		}
		switch unit.Type {
		case media.UnitVideo:
			slog.Info("video",
				"size", fmt.Sprintf("%dx%d", unit.Video.Width, unit.Video.Height),
				"format", unit.Video.PixelFormat.String(),
				"bytes", len(unit.Video.Data), "timecode", unit.Video.Timecode)
		case media.UnitAudio:
			slog.Info("audio",
				"rate", unit.Audio.SampleRate, "channels", unit.Audio.Channels,
				"samples", unit.Audio.Samples, "timecode", unit.Audio.Timecode)
		case media.UnitMetadata:
			slog.Info("metadata", "bytes", len(unit.Metadata.Data), "timecode", unit.Metadata.Timecode)
		}
	}
	stats := sess.Stats()
	slog.Info("monitor done",
		"video", stats.VideoFrames, "audio", stats.AudioFrames,
		"metadata", stats.MetadataFrames, "bytes", stats.BytesReceived)
	return nil
}

// runBeacon advertises a test-pattern source at the configured frame rate.
func runBeacon(ctx context.Context, cfg *Config, eng engine.Engine, st *status) error {
	sess, err := send.New(eng, cfg.Name, nil)
	if err != nil {
		return fmt.Errorf("beacon: %w", err)
	}
	defer sess.Close()
	st.setSend(sess)

	interval := beaconInterval(cfg.FrameRateN, cfg.FrameRateD)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("beacon advertising", "name", cfg.Name,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := sess.SendTestPattern(cfg.Width, cfg.Height, cfg.FrameRateN, cfg.FrameRateD)
			if err != nil {
				return fmt.Errorf("beacon: %w", err)
			}
		}
	}
}

// beaconInterval converts a frame rate to a tick period. Clamped to a
// millisecond so an absurd rate cannot produce the zero duration that
// time.NewTicker panics on.
func beaconInterval(n, d int) time.Duration {
	interval := time.Duration(int64(time.Second) * int64(d) / int64(n))
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return interval
}

func applyEnvOverrides(cfg *Config) {
	cfg.Mode = envOr("NDIKIT_MODE", cfg.Mode)
	cfg.Engine = envOr("NDIKIT_ENGINE", cfg.Engine)
	cfg.Source = envOr("NDIKIT_SOURCE", cfg.Source)
	cfg.Name = envOr("NDIKIT_NAME", cfg.Name)
	cfg.StatusAddr = envOr("NDIKIT_STATUS_ADDR", cfg.StatusAddr)
	if v, err := strconv.Atoi(os.Getenv("NDIKIT_SCAN_TIMEOUT_MS")); err == nil && v > 0 {
		cfg.ScanTimeoutMS = v
	}
	if v, err := strconv.Atoi(os.Getenv("NDIKIT_CAPTURE_TIMEOUT_MS")); err == nil && v > 0 {
		cfg.CaptureTimeoutMS = v
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
