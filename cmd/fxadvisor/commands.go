package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omerorhan/fx-advisor/internal/api"
	"github.com/omerorhan/fx-advisor/internal/engine"
	"github.com/omerorhan/fx-advisor/internal/service"
)

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}

		logger, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		svc, err := newService(cfg, logger, true)
		if err != nil {
			return fmt.Errorf("failed to create advisor: %w", err)
		}
		defer svc.Stop()

		if err := svc.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize advisor: %w", err)
		}

		srv := api.NewServer(svc, api.Options{
			CORSOrigins:    cfg.Server.CORSOrigins,
			RequestsPerSec: cfg.Server.RequestsPerSec,
			Burst:          cfg.Server.Burst,
			RequestTimeout: cfg.Server.RequestTimeout,
			Version:        version,
		}, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("starting fxadvisor", zap.String("version", version), zap.String("addr", cfg.Server.Addr()))
		return srv.ListenAndServe(ctx, cfg.Server.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
}

// --- Recommend Command ---

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the best exchange channel for a request",
	Long: `Recommend ranks every eligible exchange channel for a single request
and prints the decision as JSON.

Examples:
  fxadvisor recommend --amount 5000 --from USD --to CNY --location 北京
  fxadvisor recommend --amount 60000 --from EUR --to CNY --method DIGITAL --urgency HIGH --weights 3,4,5,2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		amount, _ := flags.GetFloat64("amount")
		from, _ := flags.GetString("from")
		to, _ := flags.GetString("to")
		method, _ := flags.GetString("method")
		location, _ := flags.GetString("location")
		urgency, _ := flags.GetString("urgency")
		maxFee, _ := flags.GetFloat64("max-fee")
		purpose, _ := flags.GetString("purpose")
		vip, _ := flags.GetInt("vip")
		rawWeights, _ := flags.GetString("weights")

		req := service.RecommendReq{Request: engine.Request{
			Amount:       amount,
			FromCurrency: from,
			ToCurrency:   to,
			Method:       engine.Method(strings.ToUpper(method)),
			Location:     location,
			Urgency:      engine.Urgency(strings.ToUpper(urgency)),
			MaxFee:       maxFee,
			Purpose:      purpose,
			VIPLevel:     vip,
		}}
		if rawWeights != "" {
			w, err := parseWeights(rawWeights)
			if err != nil {
				return err
			}
			req.Weights = &w
		}

		return withService(func(ctx context.Context, svc *service.AdvisorService) (interface{}, error) {
			return svc.Recommend(ctx, req)
		})
	},
}

func init() {
	f := recommendCmd.Flags()
	f.Float64("amount", 0, "amount in the source currency")
	f.String("from", "USD", "source currency")
	f.String("to", "CNY", "target currency")
	f.String("method", "CASH", "CASH or DIGITAL")
	f.String("location", "", "city of the exchange")
	f.String("urgency", "MEDIUM", "LOW, MEDIUM or HIGH")
	f.Float64("max-fee", 1.0, "fee ceiling in percent (0 disables)")
	f.String("purpose", "", "travel, study, immigration, ...")
	f.Int("vip", 0, "VIP level 0-5")
	f.String("weights", "", "convenience,security,speed,cost (e.g. 3,3,3,3)")
	_ = recommendCmd.MarkFlagRequired("amount")
}

// --- Channels Command ---

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List channels eligible for an amount, method and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetFloat64("amount")
		method, _ := cmd.Flags().GetString("method")
		location, _ := cmd.Flags().GetString("location")

		return withService(func(ctx context.Context, svc *service.AdvisorService) (interface{}, error) {
			return svc.AvailableChannels(amount, engine.Method(method), location)
		})
	},
}

func init() {
	channelsCmd.Flags().Float64("amount", 0, "amount in the source currency")
	channelsCmd.Flags().String("method", "CASH", "CASH or DIGITAL")
	channelsCmd.Flags().String("location", "", "city of the exchange")
	_ = channelsCmd.MarkFlagRequired("amount")
}

// --- Rate Command ---

var rateCmd = &cobra.Command{
	Use:   "rate [from] [to]",
	Short: "Print the current base rate for a currency pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *service.AdvisorService) (interface{}, error) {
			return svc.RateQuote(ctx, args[0], args[1])
		})
	},
}

// --- Currencies Command ---

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List supported currency codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *service.AdvisorService) (interface{}, error) {
			return svc.SupportedCurrencies(), nil
		})
	},
}

// withService runs fn against a short-lived advisor and prints its result as JSON.
func withService(fn func(ctx context.Context, svc *service.AdvisorService) (interface{}, error)) error {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc, err := newService(cfg, logger, false)
	if err != nil {
		return fmt.Errorf("failed to create advisor: %w", err)
	}
	defer svc.Stop()

	if err := svc.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize advisor: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := fn(ctx, svc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
