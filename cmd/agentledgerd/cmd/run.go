package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentledger/chain/internal/config"
	"github.com/agentledger/chain/internal/consensus"
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/logging"
	"github.com/agentledger/chain/internal/mempool"
	"github.com/agentledger/chain/internal/metrics"
	"github.com/agentledger/chain/internal/state"
	"github.com/agentledger/chain/internal/storage"
	"github.com/agentledger/chain/internal/transport"
	"github.com/agentledger/chain/internal/types"
)

var (
	runConfigPath string
	runKeyPath    string
	runPeers      []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a validator node",
	RunE:  runNode,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "config.yaml", "path to node config YAML")
	runCmd.Flags().StringVar(&runKeyPath, "key", "", "path to this validator's hex-encoded secret key file")
	runCmd.Flags().StringSliceVar(&runPeers, "peer", nil, "pubkeyhex=http://endpoint peer, repeatable (overrides config network.peers)")
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	if runKeyPath == "" {
		return fmt.Errorf("--key is required")
	}
	keyData, err := os.ReadFile(runKeyPath)
	if err != nil {
		return fmt.Errorf("read validator key: %w", err)
	}
	secret, err := crypto.SecretKeyFromHex(strings.TrimSpace(string(keyData)))
	if err != nil {
		return fmt.Errorf("parse validator key: %w", err)
	}
	self := secret.PublicKey()

	genesisCfg, err := config.LoadGenesis(cfg.Chain.GenesisPath)
	if err != nil {
		return fmt.Errorf("load genesis: %w", err)
	}

	genesisState := state.InitGenesis(genesisCfg)
	genesisBlock := genesisCfg.CreateGenesisBlock(genesisState.Root())
	chain := consensus.NewChain(genesisBlock, genesisState, genesisCfg.Validators)

	store, err := openStore(cmd.Context(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	if err := store.PutBlock(cmd.Context(), genesisBlock); err != nil {
		logger.Warn().Err(err).Msg("failed to persist genesis block")
	}

	pool := mempool.New(mempool.Config{
		MaxSize:         cfg.Mempool.MaxSize,
		MaxPerSender:    cfg.Mempool.MaxPerSender,
		ExpiryThreshold: cfg.Mempool.ExpiryThreshold,
		Order:           parseOrderMode(cfg.Mempool.Order),
	})

	peers, err := parsePeers(runPeers, cfg.Network.Peers)
	if err != nil {
		return err
	}
	httpTransport := transport.NewHTTPTransport(peers, time.Duration(cfg.Network.DialTimeoutMs)*time.Millisecond, logger)

	proposer := consensus.NewProposer(chain, pool, httpTransport, self, secret, cfg.Chain.ChainID, cfg.Chain.MaxTxsPerBlk)

	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	mux := http.NewServeMux()
	handler := &transport.Handler{
		Proposer: proposer,
		OnCommit: func(block *types.Block) error {
			return chain.CommitBlock(block, types.QuorumThreshold(len(chain.Validators())))
		},
		Logger: logger,
	}
	handler.RegisterRoutes(mux)
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	httpServer := &http.Server{Addr: cfg.Network.ListenAddr, Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		logger.Info().Str("addr", cfg.Network.ListenAddr).Msg("consensus transport listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server failed")
		}
	}()

	go proposeLoop(ctx, cfg, proposer, pool, store, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}
	return nil
}

// proposeLoop ticks at the chain's configured block interval, proposing a
// block whenever this node is the current height's leader.
func proposeLoop(ctx context.Context, cfg *config.NodeConfig, proposer *consensus.Proposer, pool *mempool.Pool, store storage.Store, logger zerolog.Logger) {
	ticker := time.NewTicker(cfg.Chain.BlockInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pool.SweepExpired(uint64(time.Now().Unix()))

			block, err := proposer.ProposeIfLeader(ctx, uint64(time.Now().Unix()))
			if err != nil {
				logger.Warn().Err(err).Msg("propose failed")
				continue
			}
			if block == nil {
				continue
			}

			metrics.BlocksProposed.Inc()
			metrics.BlocksCommitted.Inc()
			metrics.ChainHeight.Set(float64(block.Header.Height))
			metrics.TransactionsExecuted.Add(float64(len(block.Txs)))
			metrics.MempoolSize.Set(float64(pool.Len()))

			if err := store.PutBlock(ctx, block); err != nil {
				logger.Warn().Err(err).Msg("failed to persist block")
				continue
			}
			if err := store.SetTip(ctx, block.Header.Height, block.Hash()); err != nil {
				logger.Warn().Err(err).Msg("failed to persist tip")
			}
			logger.Info().Uint64("height", block.Header.Height).Int("txs", len(block.Txs)).Msg("committed block")
		}
	}
}

func openStore(ctx context.Context, cfg config.StorageSettings) (storage.Store, error) {
	switch cfg.Backend {
	case "memdb":
		return storage.OpenMemDB(), nil
	case "goleveldb", "":
		return storage.OpenGoLevelDB("agentledger", cfg.DataDir)
	case "postgres":
		return storage.OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func parseOrderMode(order string) mempool.OrderMode {
	if order == "fifo" {
		return mempool.OrderFIFO
	}
	return mempool.OrderFeeRate
}

// parsePeers builds a transport.Peer list from "pubkeyhex=endpoint"
// entries, preferring flagPeers over configPeers when both are given.
func parsePeers(flagPeers, configPeers []string) ([]transport.Peer, error) {
	entries := flagPeers
	if len(entries) == 0 {
		entries = configPeers
	}
	peers := make([]transport.Peer, 0, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid peer entry %q, want pubkeyhex=endpoint", entry)
		}
		pk, err := crypto.PublicKeyFromHex(parts[0])
		if err != nil {
			return nil, fmt.Errorf("peer entry %q: %w", entry, err)
		}
		peers = append(peers, transport.Peer{PublicKey: pk, Endpoint: parts[1]})
	}
	return peers, nil
}
