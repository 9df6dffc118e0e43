package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/legilibre/legi-snapshot-go/config"
	"github.com/legilibre/legi-snapshot-go/legisnapshot"
	"github.com/legilibre/legi-snapshot-go/legisnapshot/promadapters"
	"github.com/legilibre/legi-snapshot-go/legisnapshot/resultcache"
	"github.com/legilibre/legi-snapshot-go/legisnapshot/sqlengine"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitNotFound    = 2
	exitInvalidDate = 3
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// app holds what one command invocation needs. It is built after flags are parsed.
type app struct {
	cfg         config.Config
	logger      *slog.Logger
	service     *legisnapshot.Service
	snapshotter resultcache.Snapshotter
	registry    *prometheus.Registry
	closeStore  func()
	stdout      io.Writer
	pretty      bool
}

func newApp(ctx context.Context, cmd *cobra.Command, stdout, stderr io.Writer) (*app, error) {
	configPath, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := cfg.Log.NewLogger(stderr)
	if err != nil {
		return nil, err
	}

	pretty, err := cmd.Flags().GetBool(flagPretty)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, stdout: stdout, pretty: pretty}

	storeOptions := []sqlengine.Option{sqlengine.WithLogger(logger)}
	serviceOptions := []legisnapshot.ServiceOption{
		legisnapshot.WithLogger(logger),
		legisnapshot.WithStructureDepth(cfg.Snapshot.StructureDepth),
	}

	if cfg.Metrics.Backend == config.MetricsPrometheus {
		a.registry = prometheus.NewRegistry()

		metrics, err := promadapters.NewMetricsCollector(a.registry)
		if err != nil {
			return nil, err
		}

		storeOptions = append(storeOptions, sqlengine.WithMetrics(metrics))
		serviceOptions = append(serviceOptions, legisnapshot.WithMetrics(metrics))
	}

	store, closeStore, err := config.OpenStore(ctx, cfg, storeOptions...)
	if err != nil {
		return nil, err
	}

	a.closeStore = closeStore

	a.service, err = legisnapshot.NewService(store, serviceOptions...)
	if err != nil {
		a.close()
		return nil, err
	}

	a.snapshotter = a.service

	if cfg.Cache.Enabled {
		cache, err := resultcache.New(a.service,
			resultcache.WithMaxEntries(cfg.Cache.MaxEntries),
			resultcache.WithTTL(cfg.Cache.TTL),
		)
		if err != nil {
			a.close()
			return nil, err
		}

		a.snapshotter = cache

		if a.registry != nil {
			a.registry.MustRegister(promadapters.NewCacheCollector(cache))
		}
	}

	return a, nil
}

// close writes the metrics textfile when configured and releases the database.
func (a *app) close() {
	if a.registry != nil && a.cfg.Metrics.TextfilePath != "" {
		if err := prometheus.WriteToTextfile(a.cfg.Metrics.TextfilePath, a.registry); err != nil {
			a.logger.Warn("failed to write metrics textfile", "path", a.cfg.Metrics.TextfilePath, "error", err)
		}
	}

	if a.closeStore != nil {
		a.closeStore()
	}
}

// print writes value as one JSON document. Trees encode through their own MarshalJSON, which
// jsoniter does not re-indent, so pretty output is indented afterwards.
func (a *app) print(value any) error {
	out, err := jsonAPI.Marshal(value)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if a.pretty {
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return err
		}
	} else {
		buf.Write(out)
	}

	buf.WriteByte('\n')

	_, err = buf.WriteTo(a.stdout)

	return err
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, legisnapshot.ErrNotFound):
		return exitNotFound
	case errors.Is(err, legisnapshot.ErrInvalidDate):
		return exitInvalidDate
	default:
		return exitFailure
	}
}
