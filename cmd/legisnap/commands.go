package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/legilibre/legi-snapshot-go/config"
	"github.com/legilibre/legi-snapshot-go/legisnapshot"
	"github.com/legilibre/legi-snapshot-go/legisnapshot/resultcache"
	"github.com/legilibre/legi-snapshot-go/legisnapshot/sqlengine"
)

// Flag names. Those listed in config.FlagKeys override configuration keys.
const (
	flagConfig     = "config"
	flagPretty     = "pretty"
	flagTimeout    = "timeout"
	flagDate       = "date"
	flagNature     = "nature"
	flagState      = "state"
	flagDriver     = "driver"
	flagDSN        = "dsn"
	flagReplicaDSN = "replica-dsn"
	flagDepth      = "depth"
	flagBatchSize  = "batch-size"
	flagCache      = "cache"
	flagLogLevel   = "log-level"
	flagLogFormat  = "log-format"
	flagMetrics    = "metrics"
	flagMetricsOut = "metrics-out"
)

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "legisnap:", err)
	}

	return exitCode(err)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "legisnap",
		Short:         "Point-in-time snapshots of French legal texts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String(flagConfig, "", "YAML configuration file")
	flags.Bool(flagPretty, false, "indent the JSON output")
	flags.Duration(flagTimeout, time.Minute, "abort the command after this duration")
	flags.String(flagDriver, "", "database driver: pgx, postgres, sqlx or sqlite")
	flags.String(flagDSN, "", "database connection string, or file path for sqlite")
	flags.String(flagReplicaDSN, "", "read replica connection string (pgx only)")
	flags.Int(flagDepth, legisnapshot.DefaultStructureDepth, "levels below the root returned by structure, 0 for all")
	flags.Int(flagBatchSize, sqlengine.DefaultBatchSize, "maximum ids per SQL IN list")
	flags.Bool(flagCache, false, "memoize snapshot results")
	flags.String(flagLogLevel, "", "log level: debug, info, warn or error")
	flags.String(flagLogFormat, "", "log format: text or json")
	flags.String(flagMetrics, "", "metrics backend: none or prometheus")
	flags.String(flagMetricsOut, "", "write prometheus metrics to this file when done")

	snapshotCommand := func(use, short string, get snapshotFunc) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use + " <element-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: withApp(stdout, stderr, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
				raw, err := cmd.Flags().GetString(flagDate)
				if err != nil {
					return err
				}

				date, err := a.service.ParseDate(raw)
				if err != nil {
					return err
				}

				tree, err := get(a.snapshotter, ctx, args[0], date)
				if err != nil {
					return err
				}

				return a.print(tree)
			}),
		}
		cmd.Flags().String(flagDate, "", "reference date YYYY-MM-DD, today when omitted")

		return cmd
	}

	root.AddCommand(
		snapshotCommand("structure", "Print the section tree of a text at a date",
			resultcache.Snapshotter.GetStructure),
		snapshotCommand("full", "Print sections and articles with content at a date",
			resultcache.Snapshotter.GetFull),
		newDatesCommand(stdout, stderr),
		newTextsCommand(stdout, stderr),
		newContainersCommand(stdout, stderr),
		newArticleCommand(stdout, stderr),
		newParentsCommand(stdout, stderr),
		newConfigCommand(stdout),
	)

	return root
}

func newDatesCommand(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "dates <element-id>",
		Short: "Print the dates on which the enclosing text changed",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(stdout, stderr, func(ctx context.Context, _ *cobra.Command, a *app, args []string) error {
			dates, err := a.snapshotter.GetValidityDates(ctx, args[0])
			if err != nil {
				return err
			}

			return a.print(dates)
		}),
	}
}

func newTextsCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "List the texts of a nature",
		Args:  cobra.NoArgs,
		RunE: withApp(stdout, stderr, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			nature, err := cmd.Flags().GetString(flagNature)
			if err != nil {
				return err
			}

			texts, err := a.service.ListTexts(ctx, nature)
			if err != nil {
				return err
			}

			return a.print(texts)
		}),
	}
	cmd.Flags().String(flagNature, legisnapshot.DefaultTextNature, "text nature, e.g. CODE or DECRET")

	return cmd
}

func newContainersCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "containers",
		Short: "List collective-agreement containers, latest publication first",
		Args:  cobra.NoArgs,
		RunE: withApp(stdout, stderr, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			nature, err := cmd.Flags().GetString(flagNature)
			if err != nil {
				return err
			}

			rawStates, err := cmd.Flags().GetStringSlice(flagState)
			if err != nil {
				return err
			}

			states := make([]legisnapshot.LifecycleState, 0, len(rawStates))
			for _, state := range rawStates {
				states = append(states, legisnapshot.LifecycleState(state))
			}

			containers, err := a.service.ListContainers(ctx, nature, states...)
			if err != nil {
				return err
			}

			return a.print(containers)
		}),
	}
	cmd.Flags().String(flagNature, "", "container nature, e.g. IDCC; all natures when omitted")
	cmd.Flags().StringSlice(flagState, nil, "container states, VIGUEUR, VIGUEUR_ETEN and VIGUEUR_NON_ETEN when omitted")

	return cmd
}

func newParentsCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parents <element-id>",
		Short: "Print the enclosing text and sections of an element at a date",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(stdout, stderr, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			raw, err := cmd.Flags().GetString(flagDate)
			if err != nil {
				return err
			}

			date, err := a.service.ParseDate(raw)
			if err != nil {
				return err
			}

			parents, err := a.service.GetParentSections(ctx, args[0], date)
			if err != nil {
				return err
			}

			return a.print(parents)
		}),
	}
	cmd.Flags().String(flagDate, "", "reference date YYYY-MM-DD, today when omitted")

	return cmd
}

func newArticleCommand(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "article <article-id>",
		Short: "Print one article with its content",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(stdout, stderr, func(ctx context.Context, _ *cobra.Command, a *app, args []string) error {
			article, err := a.service.GetArticle(ctx, args[0])
			if err != nil {
				return err
			}

			return a.print(article)
		}),
	}
}

func newConfigCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString(flagConfig)
			if err != nil {
				return err
			}

			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}

			return cfg.WriteYAML(stdout)
		},
	}
}

type snapshotFunc func(
	s resultcache.Snapshotter,
	ctx context.Context,
	id string,
	date legisnapshot.Date,
) (legisnapshot.TreeNode, error)

type appRunner func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error

// withApp builds the app for cmd, applies the timeout and releases everything afterwards.
func withApp(stdout, stderr io.Writer, runner appRunner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		timeout, err := cmd.Flags().GetDuration(flagTimeout)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		a, err := newApp(ctx, cmd, stdout, stderr)
		if err != nil {
			return err
		}
		defer a.close()

		return runner(ctx, cmd, a, args)
	}
}
