// Package cli implements aimectl, the offline admin tool for partner
// fixtures, persona routing and trend previews.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	repository "github.com/aimehq/aime/internal/adapters/repository"
	"github.com/aimehq/aime/internal/config"
	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/routing"
	"github.com/aimehq/aime/internal/domain/trend"
	"github.com/aimehq/aime/pkg/logger"
)

type options struct {
	logLevel    string
	fixturesDir string
	importDir   string
}

// NewRootCommand builds the aimectl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "aimectl",
		Short:         "Inspect AIME partner configs offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.InitWithOptions(logger.Options{Level: opts.logLevel, Output: cmd.ErrOrStderr()})
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.fixturesDir, "fixtures", "", "directory overlaying the embedded partner fixtures")
	root.PersistentFlags().StringVar(&opts.importDir, "import-dir", "", "directory of imported partner configs, read last")

	root.AddCommand(newValidateCommand(opts), newRouteCommand(opts), newTrendCommand(opts))
	return root
}

// loadStore loads the embedded fixtures plus any configured directories.
func (o *options) loadStore(ctx context.Context) (*repository.PartnerStore, repository.LoadReport, error) {
	store := repository.NewPartnerStore(
		repository.WithDirectory("fixtures_dir", o.fixturesDir),
		repository.WithDirectory("import_dir", o.importDir),
		repository.WithLogger(logger.Get().Named("aimectl")),
	)
	report, err := store.Load(ctx)
	return store, report, err
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load every partner fixture and print the load report",
		Long: `Load the embedded partner fixtures, then --fixtures and --import-dir
in that order, and print which partners loaded and which fixtures were
skipped. Exits non-zero when nothing loads or any fixture is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, report, err := opts.loadStore(cmd.Context())
			if printErr := printJSON(cmd.OutOrStdout(), report); printErr != nil {
				return printErr
			}
			if err != nil {
				return err
			}
			if len(report.Skipped) > 0 {
				return fmt.Errorf("%d fixture(s) skipped", len(report.Skipped))
			}
			return nil
		},
	}
}

func newRouteCommand(opts *options) *cobra.Command {
	var (
		partnerID, audience, platform, contentType, reach string
		threshold                                         int64
	)
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Route a signal to a persona",
		Example: `  aimectl route --partner gima --audience clinician --platform instagram
  aimectl route --partner allmax --reach 20000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := opts.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := store.Get(cmd.Context(), partnerID)
			if err != nil {
				return err
			}
			sig, err := partner.ParseSignal(audience, platform, contentType, reach)
			if err != nil {
				return err
			}
			router := routing.NewRuleRouter(routing.WithBurstReachThreshold(threshold))
			return printJSON(cmd.OutOrStdout(), router.Route(cfg, sig))
		},
	}
	f := cmd.Flags()
	f.StringVar(&partnerID, "partner", "", "partner id")
	f.StringVar(&audience, "audience", "", "comma separated audiences")
	f.StringVar(&platform, "platform", "", "comma separated platforms")
	f.StringVar(&contentType, "content-type", "", "comma separated content types")
	f.StringVar(&reach, "reach", "", "signal reach")
	f.Int64Var(&threshold, "burst-threshold", config.New(context.Background()).BurstReachThreshold, "reach above which high-volume partners use their priority persona")
	_ = cmd.MarkFlagRequired("partner")
	return cmd
}

func newTrendCommand(opts *options) *cobra.Command {
	var partnerID, metric, rng string
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print a synthetic metric series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := trend.ParseMetric(metric)
			if err != nil {
				return err
			}
			store, _, err := opts.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := store.Get(cmd.Context(), partnerID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), trend.NewSynthesizer().Build(m, cfg, trend.ParseRange(rng)))
		},
	}
	f := cmd.Flags()
	f.StringVar(&partnerID, "partner", "", "partner id")
	f.StringVar(&metric, "metric", string(trend.MetricSignals), "signals, comments, latencyMs or errorRate")
	f.StringVar(&rng, "range", string(trend.Range24h), "24h, 7d or 30d")
	_ = cmd.MarkFlagRequired("partner")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
