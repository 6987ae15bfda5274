// Package app assembles the custodian services from configuration. Both the
// HTTP server and the operator CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"custodian/internal/audit"
	"custodian/internal/audit/relay"
	auditpg "custodian/internal/audit/store/postgres"
	"custodian/internal/compliance"
	compliancestore "custodian/internal/compliance/store"
	"custodian/internal/dsr"
	dsrstore "custodian/internal/dsr/store"
	"custodian/internal/jobs"
	"custodian/internal/platform/config"
	"custodian/internal/platform/database"
	"custodian/internal/platform/health"
	"custodian/internal/platform/kafka"
	"custodian/internal/platform/kafka/consumer"
	"custodian/internal/platform/kafka/producer"
	"custodian/internal/platform/redis"
	"custodian/internal/signals"
	httptransport "custodian/internal/transport/http"
	"custodian/pkg/platform/middleware/metadata"
)

const sweepLockKey = "custodian:audit:retention"

// App holds the wired services and the infrastructure they share.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Audit      *audit.Logger
	Bus        *audit.LocalBus
	Compliance *compliance.Service
	DSR        *dsr.Service
	Personal   dsr.PersonalData
	Health     *health.Handler

	pool     *database.Pool
	redis    *redis.Client
	consumer *consumer.Consumer
	producer producer.Publisher
	alerts   *relay.AlertForwarder
}

// New connects the configured backends and builds every service. Postgres
// and Redis are optional; without a database URL the in-memory stores are
// used. Kafka is started separately by StartStreaming.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Bus:    audit.NewLocalBus(),
		Health: health.New(cfg.Server.Environment),
	}

	if err := a.connect(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	if err := a.build(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	if cfg.Database.URL != "" {
		if err := database.EnsureSchema(cfg.Database.URL); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	pool, err := database.New(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.pool = pool
	if pool != nil {
		a.Health.RegisterCheck("database", pool.Health)
		a.Logger.InfoContext(ctx, "database connected")
	} else {
		a.Logger.WarnContext(ctx, "no database configured, using in-memory stores")
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	a.redis = client
	if client != nil {
		a.Health.RegisterCheck("redis", client.Health)
		a.Logger.InfoContext(ctx, "redis connected")
	}
	return nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	auditOpts := []audit.Option{
		audit.WithLogger(a.Logger),
		audit.WithEnabled(cfg.Audit.Enabled),
		audit.WithBufferSize(cfg.Audit.BufferSize),
		audit.WithAlerting(cfg.Audit.Alerting),
	}
	if a.pool != nil {
		auditOpts = append(auditOpts, audit.WithBackend(auditpg.New(a.pool.DB())))
	}
	if a.redis != nil {
		auditOpts = append(auditOpts, audit.WithSweepLocker(redis.NewLock(a.redis.Client, sweepLockKey, cfg.Redis.SweepLockTTL)))
	}
	a.Audit = audit.New(auditOpts...)
	if err := a.Audit.Init(ctx); err != nil {
		return fmt.Errorf("init audit logger: %w", err)
	}
	a.Audit.AttachHooks(a.Bus)

	tables := Tables(cfg.DSR)

	var (
		policies compliance.Store
		requests dsr.Store
	)
	if a.pool != nil {
		policies = compliancestore.NewPostgres(a.pool.DB())
		requests = dsrstore.NewPostgres(a.pool.DB())
		a.Personal = dsrstore.NewPostgresPersonalData(a.pool.DB())
	} else {
		policies = compliancestore.New()
		requests = dsrstore.New()
		a.Personal = dsrstore.NewPersonalData()
	}

	frameworks := make([]compliance.Framework, 0, len(cfg.Compliance.Frameworks))
	for _, f := range cfg.Compliance.Frameworks {
		frameworks = append(frameworks, compliance.Framework(f))
	}
	engine, err := compliance.New(policies,
		compliance.WithSystemSignals(signals.New(cfg.Security, tables)),
		compliance.WithAuditSignals(a.Audit),
		compliance.WithAuditSink(a.Audit),
		compliance.WithFrameworks(frameworks...),
		compliance.WithMaxParallel(cfg.Compliance.MaxParallel),
		compliance.WithLogger(a.Logger),
	)
	if err != nil {
		return fmt.Errorf("build compliance engine: %w", err)
	}
	a.Compliance = engine

	if cfg.Compliance.SeedDefaults {
		for _, f := range engine.Frameworks() {
			n, err := engine.SeedDefaultPolicies(ctx, f)
			if err != nil {
				return fmt.Errorf("seed %s policies: %w", f, err)
			}
			a.Logger.InfoContext(ctx, "seeded default policies", "framework", f, "created", n)
		}
	}

	handler, err := dsr.New(requests, a.Personal,
		dsr.WithTables(tables),
		dsr.WithAuditSink(a.Audit),
		dsr.WithLogger(a.Logger),
	)
	if err != nil {
		return fmt.Errorf("build dsr handler: %w", err)
	}
	a.DSR = handler
	return nil
}

// Tables converts the configured personal-data tables, falling back to
// dsr.DefaultTables when none are listed.
func Tables(cfg config.DSR) []dsr.Table {
	if len(cfg.Tables) == 0 {
		return dsr.DefaultTables()
	}
	out := make([]dsr.Table, 0, len(cfg.Tables))
	for _, t := range cfg.Tables {
		out = append(out, dsr.Table{
			Name:           t.Table,
			SubjectColumn:  t.SubjectColumn,
			Classification: t.Classification,
		})
	}
	return out
}

// RetentionOptions is the configured default retention policy.
func (a *App) RetentionOptions() audit.RetentionOptions {
	r := a.Config.Audit.Retention
	return audit.RetentionOptions{
		RetentionDays:         r.Days,
		MaxRecords:            r.MaxRecords,
		KeepHighRisk:          r.KeepHighRisk,
		HighRiskRetentionDays: r.HighRiskDays,
	}
}

// StartStreaming connects the hook consumer and the alert producer. It is a
// no-op when no brokers are configured.
func (a *App) StartStreaming(ctx context.Context) error {
	cfg := a.Config.Kafka
	if cfg.Brokers == "" {
		a.Logger.InfoContext(ctx, "kafka not configured, hook relay and alert forwarding disabled")
		return nil
	}

	c, err := consumer.New(consumer.Config{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topics:  []string{cfg.HookTopic},
	}, relay.NewHookRelay(a.Bus, a.Logger), a.Logger)
	if err != nil {
		return fmt.Errorf("create hook consumer: %w", err)
	}
	a.consumer = c

	p, err := producer.New(producer.Config{Brokers: cfg.Brokers}, a.Logger)
	if err != nil {
		return fmt.Errorf("create alert producer: %w", err)
	}
	a.producer = p

	fwd, err := relay.NewAlertForwarder(p, cfg.AlertTopic, a.Logger)
	if err != nil {
		return fmt.Errorf("create alert forwarder: %w", err)
	}
	fwd.Attach(a.Audit)
	a.alerts = fwd

	c.Start()
	a.Health.RegisterCheck("kafka", kafka.ReadinessCheck(cfg.Brokers, 2*time.Second))
	a.Logger.InfoContext(ctx, "kafka streaming started",
		"hook_topic", cfg.HookTopic,
		"alert_topic", cfg.AlertTopic,
	)
	return nil
}

// Scheduler registers the background jobs enabled by configuration.
func (a *App) Scheduler() (*jobs.Scheduler, error) {
	s := jobs.New(a.Logger)
	cfg := a.Config.Jobs

	if err := s.Add(cfg.RetentionSchedule, a.RetentionJob()); err != nil {
		return nil, err
	}
	if err := s.Add(cfg.OverdueSchedule, a.OverdueJob()); err != nil {
		return nil, err
	}
	if a.redis != nil {
		if err := s.Add("@every 30s", jobs.PoolGauges{Pool: a.redis}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (a *App) RetentionJob() jobs.RetentionSweep {
	return jobs.RetentionSweep{Audit: a.Audit, Options: a.RetentionOptions(), Logger: a.Logger}
}

func (a *App) OverdueJob() jobs.OverdueScan {
	return jobs.OverdueScan{DSR: a.DSR, Logger: a.Logger}
}

// Router builds the HTTP handler for the admin API and probes.
func (a *App) Router() http.Handler {
	// Validate has already rejected malformed entries.
	proxies, _ := metadata.ParseTrustedProxies(a.Config.Server.TrustedProxies)
	return httptransport.NewRouter(httptransport.RouterConfig{
		Health:         a.Health,
		Audit:          httptransport.NewAuditHandler(a.Audit, a.RetentionOptions(), a.Logger),
		Compliance:     httptransport.NewComplianceHandler(a.Compliance, a.Logger),
		DSR:            httptransport.NewDSRHandler(a.DSR, a.Logger),
		AdminToken:     a.Config.Server.AdminToken,
		TrustedProxies: proxies,
	}, a.Logger)
}

// Close stops streaming, destroys the audit logger and releases connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.alerts != nil {
		a.alerts.Detach()
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop hook consumer: %w", err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close alert producer: %w", err))
		}
	}
	if a.Audit != nil {
		a.Audit.Destroy()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := a.pool.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
