package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	vaultapi "github.com/hashicorp/vault/api"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/s-larionov/process-manager"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/goverland-labs/treasury-tvl/internal/config"
	"github.com/goverland-labs/treasury-tvl/internal/metrics"
	"github.com/goverland-labs/treasury-tvl/internal/secrets"
	"github.com/goverland-labs/treasury-tvl/internal/tvl"
	"github.com/goverland-labs/treasury-tvl/pkg/health"
	"github.com/goverland-labs/treasury-tvl/pkg/prometheus"
	"github.com/goverland-labs/treasury-tvl/pkg/sdk/erc20"
	"github.com/goverland-labs/treasury-tvl/pkg/sdk/subgraph"
)

const (
	dialTimeout    = 10 * time.Second
	requestTimeout = 30 * time.Second
)

type Application struct {
	sigChan <-chan os.Signal
	manager *process.Manager
	cfg     config.App
	db      *gorm.DB
	nc      *nats.Conn

	addresses *tvl.AddressMap
	indexers  map[tvl.Chain]tvl.Indexer
	callers   map[tvl.Chain]tvl.TokenCaller
	rpcs      []*erc20.Client

	adapter   *tvl.Adapter
	cache     *tvl.Cache
	repo      *tvl.Repo
	publisher *tvl.Publisher
}

func NewApplication(cfg config.App) (*Application, error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	a := &Application{
		sigChan: sigChan,
		cfg:     cfg,
		manager: process.NewManager(),
	}

	err := a.bootstrap()
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Application) Run() {
	a.manager.StartAll()
	a.registerShutdown()
}

func (a *Application) bootstrap() error {
	initializers := []func() error{
		a.initAddressMap,
		a.initClients,
		a.initDB,
		a.initNats,

		// Init Dependencies
		a.initServices,

		// Init Workers: Application
		a.initRefreshWorker,
		a.initAPI,

		// Init Workers: System
		a.initPrometheusWorker,
		a.initHealthWorker,
	}

	for _, initializer := range initializers {
		if err := initializer(); err != nil {
			return err
		}
	}

	return nil
}

func (a *Application) initAddressMap() error {
	addresses, err := tvl.LoadAddressMap(a.cfg.Refresh.AddressMapPath)
	if err != nil {
		return fmt.Errorf("address map: %w", err)
	}

	log.Info().
		Str("version", addresses.Version()).
		Int("entries", addresses.Len()).
		Msg("address map loaded")

	a.addresses = addresses

	return nil
}

func (a *Application) initClients() error {
	endpoints := a.cfg.RPC.ByChain()
	if a.cfg.Vault.Enabled() {
		resolved, err := a.resolveRPCFromVault(endpoints)
		if err != nil {
			return err
		}
		endpoints = resolved
	}

	a.indexers = make(map[tvl.Chain]tvl.Indexer)
	a.callers = make(map[tvl.Chain]tvl.TokenCaller)

	for chain, url := range a.cfg.Subgraph.ByChain() {
		rpcURL := endpoints[chain]
		if url == "" || rpcURL == "" {
			log.Warn().Str("chain", chain).Msg("chain is disabled: subgraph or rpc endpoint is not configured")
			continue
		}

		a.indexers[tvl.Chain(chain)] = subgraph.NewClient(url, &http.Client{
			Transport: metrics.NewRequestWatcher("subgraph_"+chain, nil),
			Timeout:   requestTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		caller, err := erc20.Dial(ctx, rpcURL,
			rpc.WithHTTPClient(&http.Client{
				Transport: metrics.NewRequestWatcher("rpc_"+chain, nil),
				Timeout:   requestTimeout,
			}),
			rpc.WithHeader("alias", "json_rpc"),
		)
		cancel()
		if err != nil {
			return fmt.Errorf("rpc client for %s: %w", chain, err)
		}

		a.callers[tvl.Chain(chain)] = caller
		a.rpcs = append(a.rpcs, caller)
	}

	if len(a.indexers) == 0 {
		return fmt.Errorf("no chains configured")
	}

	return nil
}

func (a *Application) resolveRPCFromVault(endpoints map[string]string) (map[string]string, error) {
	vc, err := vaultapi.NewClient(&vaultapi.Config{Address: a.cfg.Vault.Address})
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	vc.SetToken(a.cfg.Vault.Token)

	resolved, err := secrets.NewRPCResolver(vc.Logical(), a.cfg.Vault.BasePath).Resolve(endpoints)
	if err != nil {
		return nil, fmt.Errorf("resolve rpc endpoints: %w", err)
	}

	return resolved, nil
}

func (a *Application) initDB() error {
	if !a.cfg.DB.Enabled() {
		log.Info().Msg("snapshot history is disabled")
		return nil
	}

	db, err := gorm.Open(postgres.Open(a.cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	ps, err := db.DB()
	if err != nil {
		return err
	}
	ps.SetMaxOpenConns(a.cfg.DB.MaxOpenConnections)

	a.db = db
	if a.cfg.DB.Debug {
		a.db = db.Debug()
	}

	return nil
}

func (a *Application) initNats() error {
	if !a.cfg.Nats.Enabled() {
		log.Info().Msg("snapshot publishing is disabled")
		return nil
	}

	nc, err := nats.Connect(
		a.cfg.Nats.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(a.cfg.Nats.MaxReconnects),
		nats.ReconnectWait(a.cfg.Nats.ReconnectTimeout),
	)
	if err != nil {
		return err
	}

	a.nc = nc

	return nil
}

func (a *Application) initServices() error {
	a.adapter = tvl.NewAdapter(a.indexers, a.callers, a.addresses)
	a.cache = tvl.NewCache(a.cfg.Refresh.CacheSize, a.cfg.Refresh.CacheTTL)

	if a.db != nil {
		a.repo = tvl.NewRepo(a.db)
		if err := a.repo.Migrate(); err != nil {
			return fmt.Errorf("migrate snapshots: %w", err)
		}
	}

	if a.nc != nil {
		a.publisher = tvl.NewPublisher(a.nc, a.cfg.Nats.Subject)
	}

	return nil
}

func (a *Application) initRefreshWorker() error {
	var (
		storage   tvl.SnapshotStorage
		publisher tvl.SnapshotPublisher
	)
	if a.repo != nil {
		storage = a.repo
	}
	if a.publisher != nil {
		publisher = a.publisher
	}

	w := tvl.NewRefreshWorker(a.adapter, a.cache, storage, publisher, a.cfg.Refresh.Interval)
	a.manager.AddWorker(process.NewCallbackWorker("snapshot-refresher", w.Start))

	return nil
}

func (a *Application) initAPI() error {
	var history tvl.HistoryReader
	if a.repo != nil {
		history = a.repo
	}

	srv := &http.Server{
		Addr:              a.cfg.API.Bind,
		Handler:           tvl.NewServer(a.adapter, a.cache, history).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.manager.AddWorker(process.NewServerWorker("API", srv))

	return nil
}

func (a *Application) initPrometheusWorker() error {
	srv := prometheus.NewServer(a.cfg.Prometheus.Listen, "/metrics")
	a.manager.AddWorker(process.NewServerWorker("prometheus", srv))

	return nil
}

func (a *Application) initHealthWorker() error {
	srv := health.NewHealthCheckServer(a.cfg.Health.Listen, "/status", health.DefaultHandler(a.manager))
	a.manager.AddWorker(process.NewServerWorker("health", srv))

	return nil
}

func (a *Application) registerShutdown() {
	go func(manager *process.Manager) {
		<-a.sigChan

		manager.StopAll()
	}(a.manager)

	a.manager.AwaitAll()

	for _, c := range a.rpcs {
		c.Close()
	}

	if a.nc != nil {
		a.nc.Close()
	}
}
