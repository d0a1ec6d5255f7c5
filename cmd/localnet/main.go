package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/pflag"

	"examplecpi/internal/examplecpi"
	"examplecpi/internal/logging"
	"examplecpi/internal/validator"
)

const (
	fundSOL   = 100
	fundQuote = 1_000_000
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "localnet:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("localnet", pflag.ContinueOnError)
	addr := fs.String("addr", ":8899", "listen address")
	clusterName := fs.String("cluster", "localnet", "cluster whose program ids to load")
	fund := fs.StringArray("fund", nil, "pubkey to fund with SOL and quote tokens (repeatable)")
	level := fs.String("log-level", "info", "debug, info, warn or error")
	format := fs.String("log-format", "console", "console or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: *level, Format: *format})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cluster := examplecpi.ClusterFor(*clusterName)
	ledger := validator.NewLocalnet(cluster)
	group, g, err := ledger.CreateCypherGroup(cluster)
	if err != nil {
		return err
	}
	log.Info("cypher group",
		logging.Stringer("group", group),
		logging.Stringer("quote_vault", g.QuoteVault))
	for _, s := range *fund {
		owner, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return fmt.Errorf("--fund %q: %w", s, err)
		}
		token := ledger.FundUser(owner, fundSOL, fundQuote, cluster.QuoteMint)
		log.Info("funded",
			logging.Stringer("owner", owner),
			logging.Stringer("quote_token_account", token))
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           validator.NewServer(ledger, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("localnet listening",
			logging.String("addr", *addr),
			logging.Stringer("program", examplecpi.ProgramID),
			logging.Stringer("cypher", cluster.CypherProgramID))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
