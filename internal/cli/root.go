// Package cli wires the command-line surface of the client.
package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/config"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/logging"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/oracle"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/rpc"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/service"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/signer"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/txflow"
)

var (
	configFile string
	envName    string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "stellarguard",
	Short: "StellarGuard - protective order client for Soroban contracts",
	Long: `stellarguard submits protective trading orders (stop-loss,
trailing-stop, OCO, TWAP stops) to an on-chain order contract and reads
asset prices from the network's oracle contracts.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.EnvTest, "network environment (test or production)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// app bundles everything a subcommand needs, plus its cleanup.
type app struct {
	env     config.Environment
	svc     *service.Service
	signer  signer.Signer
	log     *zap.Logger
	journal *txflow.Journal
}

func (a *app) close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	_ = a.log.Sync()
}

// setup loads configuration and composes the service. The signing seed
// comes from STELLARGUARD_SEED (32 bytes, hex); read-only commands fall
// back to an ephemeral key, which is enough for simulate-only calls.
func setup() (*app, error) {
	log, err := logging.New(debug)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	env, err := config.Load(envName, configFile)
	if err != nil {
		return nil, err
	}

	var sg signer.Signer
	if seedHex := os.Getenv("STELLARGUARD_SEED"); seedHex != "" {
		seed, err := hex.DecodeString(seedHex)
		if err != nil {
			return nil, fmt.Errorf("STELLARGUARD_SEED is not hex: %w", err)
		}
		if sg, err = signer.NewKeySigner(seed); err != nil {
			return nil, err
		}
	} else {
		if sg, err = signer.Generate(); err != nil {
			return nil, err
		}
		log.Warn("STELLARGUARD_SEED not set, using an ephemeral key; writes will not be authorized")
	}

	var journal *txflow.Journal
	if env.JournalPath != "" {
		if journal, err = txflow.OpenJournal(env.JournalPath, log); err != nil {
			return nil, err
		}
	}

	client := rpc.NewClient(env.RPCURL, log)
	mgr := txflow.NewManager(client, sg, env.NetworkPassphrase, txflow.Options{}, journal, log)

	static := oracle.NewRouter(env.Oracles)
	var router oracle.Resolver = static
	if env.RouterContract != "" {
		router = oracle.NewLiveRouter(static, env.RouterContract, mgr, log)
	}

	svc := service.New(env, mgr, router, oracle.NewCache(0, 0), log)
	return &app{env: env, svc: svc, signer: sg, log: log, journal: journal}, nil
}

// parseClass maps a CLI class name to an asset class.
func parseClass(name string) (oracle.AssetClass, error) {
	switch name {
	case "crypto":
		return oracle.ClassCrypto, nil
	case "stablecoin":
		return oracle.ClassStablecoin, nil
	case "native":
		return oracle.ClassNativeChainAsset, nil
	case "forex":
		return oracle.ClassForex, nil
	}
	return 0, fmt.Errorf("unknown asset class %q (want crypto, stablecoin, native or forex)", name)
}
