package main

import (
	"fmt"
	"time"

	"github.com/rahul/launchpad/internal/agent"
	"github.com/rahul/launchpad/internal/governance"
	"github.com/rahul/launchpad/internal/observability"
	"github.com/rahul/launchpad/internal/onboarding"
	"github.com/rahul/launchpad/internal/orchestrator"
	"github.com/rahul/launchpad/internal/store"
	"github.com/rahul/launchpad/internal/tools"
	"github.com/rahul/launchpad/pkg/config"
)

// app holds everything a subcommand may need. The model and the workflow are
// only built by withWorkflow.
type app struct {
	cfg      *config.Config
	store    *store.Store
	cache    *tools.TemplateCache
	registry *tools.Registry
	logger   *observability.Logger

	engine  *orchestrator.Engine
	service *onboarding.Service
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	st, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cache, err := tools.NewTemplateCache(cfg.Cache.MaxBytes, time.Duration(cfg.Cache.TemplateTTLSeconds)*time.Second)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}

	return &app{
		cfg:      cfg,
		store:    st,
		cache:    cache,
		registry: tools.NewDefaultRegistry(st, cache),
		logger:   observability.NewLogger(cfg.Logging.LLMLogPath, cfg.Logging.MaxBytes),
	}, nil
}

// withWorkflow builds the default model, the inference client, the engine and
// the completion flow.
func (a *app) withWorkflow() error {
	pName, pCfg := a.cfg.GetDefaultProvider()
	if pName == "" {
		return fmt.Errorf("no enabled provider found in config")
	}

	model, err := agent.NewModel(pName, pCfg)
	if err != nil {
		return fmt.Errorf("failed to create %s model: %w", pName, err)
	}

	policy, err := governance.NewPolicyEngine(a.cfg.Policy.DeniedTools, a.cfg.Policy.DeniedArguments)
	if err != nil {
		return err
	}

	client := agent.NewLLMClient(model, pCfg.Model, a.registry, policy, a.logger, a.cfg.Orchestrator.MaxToolRounds)
	selector := agent.NewSelector(client, pName, a.cfg.Providers)
	prompts := agent.NewPromptManager(a.cfg.App.PromptsDir)
	toolbox := tools.NewToolbox(a.registry)

	a.engine = orchestrator.NewEngine(toolbox, selector, prompts, a.logger, a.cfg.Orchestrator)
	a.engine.ToolDefs = a.registry.Definitions()
	a.engine.History = a.store
	a.service = onboarding.NewService(a.engine, toolbox, a.logger, a.cfg.Orchestrator.Defaults)
	a.service.Tasks = a.store
	return nil
}

func (a *app) Close() {
	a.cache.Close()
	a.store.Close()
}
