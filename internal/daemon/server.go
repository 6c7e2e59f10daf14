package daemon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reagent-dev/reagent/internal/agent"
	"github.com/reagent-dev/reagent/internal/config"
	"github.com/reagent-dev/reagent/internal/docstore"
	"github.com/reagent-dev/reagent/internal/llm/configbuilder"
	"github.com/reagent-dev/reagent/internal/observability"
	"github.com/reagent-dev/reagent/internal/rpc"
	agentrpc "github.com/reagent-dev/reagent/internal/rpc/agent"
	toolrpc "github.com/reagent-dev/reagent/internal/rpc/tools"
	"github.com/reagent-dev/reagent/internal/tools"
)

// Server hosts the daemon endpoints: health, metrics, the tool catalog and
// the streaming agent-run RPC.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	runner   agentrpc.Runner
	metrics  *observability.Metrics
	catalogs []rpc.VariantCatalog
}

// NewServer constructs a daemon instance, building every variant the
// configuration supports.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	models, err := configbuilder.BuildRegistryFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build model registry: %w", err)
	}

	metrics := observability.NewMetrics()

	opts := agent.Options{
		Model:         cfg.Agent.Model,
		MaxIterations: cfg.Agent.MaxIterations,
		MaxTokens:     cfg.Agent.MaxTokens,
		Temperature:   cfg.Agent.Temperature,
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Agent.RepairRetry)) {
	case "on":
		opts.RepairRetry = boolPtr(true)
	case "off":
		opts.RepairRetry = boolPtr(false)
	}

	agents := make(map[string]*agent.Agent)
	var catalogs []rpc.VariantCatalog

	builtin, err := tools.BuildRegistry(cfg.Tools)
	if err != nil {
		return nil, fmt.Errorf("build tools: %w", err)
	}
	zeroShot, err := agent.NewZeroShot(models, builtin, opts)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", agent.VariantZeroShot, err)
	}
	agents[agent.VariantZeroShot] = zeroShot
	catalogs = append(catalogs, rpc.VariantCatalog{Variant: agent.VariantZeroShot, Tools: toolInfos(builtin)})

	var store docstore.Store
	if cfg.Docstore.Path != "" {
		loaded, err := docstore.LoadDir(cfg.Docstore.Path)
		if err != nil {
			return nil, fmt.Errorf("load docstore: %w", err)
		}
		store = loaded

		ds, err := agent.NewDocstore(models, store, opts)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", agent.VariantDocstore, err)
		}
		agents[agent.VariantDocstore] = ds
		catalogs = append(catalogs, rpc.VariantCatalog{Variant: agent.VariantDocstore, Tools: []rpc.ToolInfo{
			{Name: "Search", Description: "Search for a document by title; returns its first paragraph or similar titles."},
			{Name: "Lookup", Description: "Return the next paragraph containing the keyword in the current document."},
		}})

		searchTool := docstoreSearchTool(store)
		selfAsk, err := agent.NewSelfAsk(models, searchTool, opts)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", agent.VariantSelfAsk, err)
		}
		agents[agent.VariantSelfAsk] = selfAsk
		catalogs = append(catalogs, rpc.VariantCatalog{Variant: agent.VariantSelfAsk, Tools: []rpc.ToolInfo{
			{Name: searchTool.Name, Description: searchTool.Description},
		}})
	}

	defaultVariant := cfg.Agent.Variant
	if cfg.Agent.File != "" {
		def, err := agent.LoadDefinition(cfg.Agent.File)
		if err != nil {
			return nil, fmt.Errorf("load agent file: %w", err)
		}
		built, err := def.Build(agent.Deps{Models: models, Store: store, Tools: builtin})
		if err != nil {
			return nil, fmt.Errorf("build agent from %s: %w", cfg.Agent.File, err)
		}
		agents[built.Variant()] = built
		defaultVariant = built.Variant()
	}

	if _, ok := agents[defaultVariant]; !ok {
		return nil, fmt.Errorf("default variant %q is not hosted (docstore.path missing?)", defaultVariant)
	}

	runner := &agentrpc.AgentRunner{
		Agents:         agents,
		DefaultVariant: defaultVariant,
		Metrics:        metrics,
		Logger:         logger,
	}

	return &Server{cfg: cfg, logger: logger, runner: runner, metrics: metrics, catalogs: catalogs}, nil
}

// docstoreSearchTool adapts a document store into the single self-ask tool.
func docstoreSearchTool(store docstore.Store) agent.Tool {
	return agent.Tool{
		Name:        agent.SelfAskToolName,
		Description: "Answer a factual follow-up question from the document store.",
		Func: func(ctx context.Context, question string) (string, error) {
			doc, suggestion, err := store.Search(ctx, question)
			if err != nil {
				return "", err
			}
			if doc == nil {
				return suggestion, nil
			}
			return doc.Summary(), nil
		},
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/metrics", s.metricsHandler)
	mux.Handle("/tools/catalog", toolrpc.CatalogHandler{Catalogs: s.catalogs})

	switch strings.ToLower(strings.TrimSpace(s.cfg.Server.Transport)) {
	case "ndjson":
		mux.Handle("/agent/run", agentrpc.NewHandler(s.runner, s.metrics))
	default:
		path, handler := agentrpc.NewConnectHandler(s.runner, s.metrics)
		mux.Handle(path, handler)
		// keep the NDJSON path available alongside Connect
		mux.Handle("/agent/run", agentrpc.NewHandler(s.runner, s.metrics))
	}

	handler := http.Handler(mux)
	if strings.ToLower(strings.TrimSpace(s.cfg.Server.Transport)) != "ndjson" {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	server := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting reagent daemon", zap.String("addr", s.cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down reagent daemon")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Server.MetricsEnabled {
		http.NotFound(w, r)
		return
	}

	promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func toolInfos(reg *agent.ToolRegistry) []rpc.ToolInfo {
	infos := make([]rpc.ToolInfo, 0, reg.Len())
	for _, name := range reg.Names() {
		t, _ := reg.Lookup(name)
		infos = append(infos, rpc.ToolInfo{Name: t.Name, Description: t.Description})
	}
	return infos
}

func boolPtr(v bool) *bool {
	return &v
}
