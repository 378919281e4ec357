package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/simaogato/brokersync/internal/adapter/robinhood"
	"github.com/simaogato/brokersync/internal/adapter/ynab"
	"github.com/simaogato/brokersync/internal/logger"
	"github.com/simaogato/brokersync/internal/usecase/reconcile"
	"github.com/simaogato/brokersync/internal/usecase/transfers"
	"github.com/simaogato/brokersync/internal/usecase/valuation"
)

// cli commands / args available
var cli struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Sync syncCmd `cmd:"" help:"Reconcile the brokerage account against the budget ledger."`
}

type syncCmd struct {
	RHToken   string `name:"rh-token" env:"RH_TOKEN" required:"" help:"Brokerage API bearer token."`
	RHBaseURL string `name:"rh-url" env:"RH_URL" default:"${rh_url}" help:"Brokerage API base URL."`

	YNABToken   string `name:"ynab-token" env:"YNAB_API_KEY" required:"" help:"Ledger API key."`
	YNABBaseURL string `name:"ynab-url" env:"YNAB_URL" default:"${ynab_url}" help:"Ledger API base URL."`

	AssetsAccount  string `env:"RH_ASSETS_ACC" required:"" help:"Ledger account tracking total brokerage assets."`
	HoldingAccount string `env:"RH_CHECKING_ACC" required:"" help:"Ledger account tracking brokerage cash movements."`

	SinceDays int  `env:"SINCE_DAYS" default:"14" help:"Reconciliation lookback window in days."`
	DryRun    bool `help:"Log planned ledger entries without creating them."`
}

// Run wires the adapters into the reconciliation driver and executes one run
func (c *syncCmd) Run(log *zerolog.Logger) error {
	brokerage := robinhood.NewClient(c.RHBaseURL, c.RHToken, nil)
	ledger := ynab.NewClient(c.YNABBaseURL, c.YNABToken, nil)

	service := reconcile.NewService(
		ledger,
		valuation.NewService(brokerage),
		transfers.NewCollector(brokerage, *log),
		reconcile.Config{
			AssetsAccountName:  c.AssetsAccount,
			HoldingAccountName: c.HoldingAccount,
			Lookback:           time.Duration(c.SinceDays) * 24 * time.Hour,
			DryRun:             c.DryRun,
		},
		*log,
	)

	report, err := service.Run(context.Background())
	if report != nil {
		log.Info().
			Str("asset_adjustment", report.AssetAdjustment.String()).
			Bool("asset_entry_created", report.AssetEntryCreated).
			Int("created", report.Created()).
			Int("matched", report.Matched()).
			Int("failed", report.Failed()).
			Msg("reconciliation finished")
	}
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("brokersync"),
		kong.Description("Reconciles a brokerage account against a budgeting ledger."),
		kong.Vars{
			"rh_url":   robinhood.DefaultBaseURL,
			"ynab_url": ynab.DefaultBaseURL,
		},
	)

	log := logger.New(cli.Verbose)
	err := ctx.Run(&log)
	ctx.FatalIfErrorf(err)
}
