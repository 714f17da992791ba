package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/llm"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/postprocess"
	"github.com/kbukum/scribe/recording"
	"github.com/kbukum/scribe/session"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/storage/local"
	"github.com/kbukum/scribe/transcript"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/backend"
	"github.com/kbukum/scribe/util"
	"github.com/kbukum/scribe/version"

	// Registered enhancement dialects and storage providers.
	_ "github.com/kbukum/scribe/llm/ollama"
	_ "github.com/kbukum/scribe/llm/openai"
	_ "github.com/kbukum/scribe/storage/s3"
)

// App holds the wired scribe infrastructure. Fields other than Settings,
// Logger and Components are populated by Start.
type App struct {
	Settings   *config.Settings
	Logger     *logger.Logger
	Components *component.Registry

	Metrics *observability.Metrics
	Factory *backend.Factory
	Store   *transcript.Store
	Stager  *recording.Store
	Mirror  *recording.Mirror
	Chain   postprocess.Chain

	gracefulTimeout time.Duration
	factoryOpts     []backend.Option
	enhancer        postprocess.Enhancer
}

// New creates an App from settings. It applies defaults, validates the
// settings and initializes the logger but performs no I/O.
func New(s *config.Settings, opts ...Option) (*App, error) {
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	app := &App{
		Settings:        s,
		gracefulTimeout: 15 * time.Second,
		factoryOpts:     o.factoryOpts,
		enhancer:        o.enhancer,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&s.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	app.Components = component.NewRegistry(app.Logger)

	for _, c := range []component.Component{
		app.telemetry(),
		app.database(),
		app.recordings(),
		app.mirror(),
		app.postprocessing(),
		app.backends(),
	} {
		if c == nil {
			continue
		}
		if err := app.Components.Register(c); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Start starts every component. On failure the components already started
// are stopped again.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("starting scribe", logger.Fields(
		"version", version.Short(),
		logger.FieldBackend, a.Settings.Backend,
	))
	if err := a.Components.StartAll(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return fmt.Errorf("initialization failed: %w", err)
	}
	return nil
}

// Shutdown stops every started component within the graceful timeout.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	return nil
}

// Name implements component.Component.
func (a *App) Name() string { return a.Settings.Name }

// Stop implements component.Component.
func (a *App) Stop(ctx context.Context) error { return a.Shutdown(ctx) }

// Health reports unhealthy when any registered component is.
func (a *App) Health(ctx context.Context) component.Health {
	h := component.Health{Name: a.Name(), Status: component.StatusHealthy}
	for _, c := range a.Components.HealthAll(ctx) {
		if c.Status != component.StatusHealthy {
			h.Status = component.StatusUnhealthy
			h.Message = c.Name + ": " + c.Message
			break
		}
	}
	return h
}

// RunTask starts the App, runs task and shuts down. SIGINT or SIGTERM
// cancels the task's context.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, cancelling", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)
	if stopErr := a.Shutdown(context.Background()); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// NewJob creates a job for path using the configured backend, language and
// prompt.
func (a *App) NewJob(path string) *transcription.Job {
	job := transcription.NewJob(path, transcription.BackendType(a.Settings.Backend))
	job.Language = a.Settings.Language
	job.Prompt = a.Settings.Prompt
	return job
}

// NewSession creates a session for job wired to the App's collaborators.
// Call it after Start.
func (a *App) NewSession(job *transcription.Job, opts ...session.Option) *session.Session {
	base := []session.Option{
		session.WithLocal(backend.LocalConfig{
			ModelPath: a.Settings.Local.ModelPath,
			Binary:    a.Settings.Local.Binary,
			Timeout:   a.Settings.Local.Timeout,
		}),
		session.WithChain(a.Chain),
		session.WithLogger(a.Logger),
	}
	if a.Metrics != nil {
		base = append(base, session.WithMetrics(a.Metrics))
	}
	if a.Store != nil {
		base = append(base, session.WithPersister(a.Store))
	}
	if a.Stager != nil {
		base = append(base, session.WithStager(a.Stager))
	}
	if a.Mirror != nil {
		base = append(base, session.WithMirror(a.Mirror))
	}
	return session.New(job, a.Factory, append(base, opts...)...)
}

func (a *App) telemetry() component.Component {
	var shutdown func(context.Context) error
	return &component.Func{
		ID: "observability",
		OnStart: func(ctx context.Context) error {
			m, sd, err := observability.Setup(ctx, a.Settings.Observability, a.Settings.Name, version.Short())
			if err != nil {
				return err
			}
			a.Metrics, shutdown = m, sd
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
	}
}

func (a *App) database() component.Component {
	var db *database.DB
	return &component.Func{
		ID: "database",
		OnStart: func(ctx context.Context) error {
			var err error
			if db, err = database.Open(ctx, a.Settings.Database, a.Logger); err != nil {
				return err
			}
			a.Store, err = transcript.NewStore(db)
			return err
		},
		OnStop: func(context.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
		Check: func(ctx context.Context) error {
			if db == nil {
				return fmt.Errorf("database not open")
			}
			return db.PingContext(ctx)
		},
	}
}

func (a *App) recordings() component.Component {
	return &component.Func{
		ID: "recordings",
		OnStart: func(context.Context) error {
			st, err := storage.New(a.Settings.Storage, a.Logger)
			if err != nil {
				return err
			}
			files, ok := st.(*local.Storage)
			if !ok {
				return fmt.Errorf("recordings need the %q storage provider, got %q", storage.ProviderLocal, a.Settings.Storage.Provider)
			}
			a.Stager = recording.NewStore(files, a.Logger)
			return nil
		},
	}
}

func (a *App) mirror() component.Component {
	if !a.Settings.Mirror.Enabled {
		return nil
	}
	return &component.Func{
		ID: "mirror",
		OnStart: func(context.Context) error {
			dst, err := storage.New(a.Settings.Mirror, a.Logger)
			if err != nil {
				return err
			}
			a.Mirror = recording.NewMirror(dst, a.Logger)
			a.Logger.Debug("audio mirror enabled", logger.Fields(
				"provider", a.Settings.Mirror.Provider,
				"access_key", util.MaskSecret(a.Settings.Mirror.AccessKey, 4),
			))
			return nil
		},
	}
}

func (a *App) postprocessing() component.Component {
	var adapter *llm.Adapter
	s := a.Settings
	return &component.Func{
		ID: "postprocess",
		OnStart: func(context.Context) error {
			a.Chain = postprocess.Chain{
				Replacer:       postprocess.NewReplacer(s.Replacements.Map()),
				ReplaceEnabled: s.Replacements.Enabled,
				Enhancer:       a.enhancer,
				EnhanceEnabled: s.Enhancement.Enabled || a.enhancer != nil,
			}
			if a.enhancer != nil || !s.Enhancement.Enabled {
				return nil
			}
			var err error
			adapter, err = llm.New(llm.Config{
				Dialect: s.Enhancement.Dialect,
				BaseURL: s.Enhancement.BaseURL,
				APIKey:  s.Enhancement.APIKey,
				Model:   s.Enhancement.Model,
				Timeout: s.Enhancement.Timeout,
				TLS:     &s.Enhancement.TLS,
			})
			if err != nil {
				return err
			}
			a.Chain.Enhancer = postprocess.NewLLMEnhancer(adapter, s.Enhancement.SystemPrompt)
			return nil
		},
		OnStop: func(context.Context) error {
			if adapter != nil {
				adapter.Close()
			}
			return nil
		},
	}
}

func (a *App) backends() component.Component {
	s := a.Settings
	return &component.Func{
		ID: "backends",
		OnStart: func(context.Context) error {
			opts := []backend.Option{
				backend.WithLogger(a.Logger),
				backend.WithPooling(s.PoolSize),
				backend.WithDefaultCloud(backend.CloudConfig{
					Endpoint: s.Cloud.Endpoint,
					APIKey:   s.Cloud.APIKey,
					Model:    s.Cloud.Model,
					Timeout:  s.Cloud.Timeout,
					TLS:      s.Cloud.TLS,
				}),
			}
			if a.Metrics != nil {
				opts = append(opts, backend.WithMetrics(a.Metrics))
			}
			a.Factory = backend.New(append(opts, a.factoryOpts...)...)
			a.Logger.Debug("backend factory ready", logger.Fields(
				"backends", a.Factory.Backends(),
				"cloud_api_key", util.MaskSecret(s.Cloud.APIKey, 4),
			))
			return nil
		},
		OnStop: func(context.Context) error {
			if a.Factory == nil {
				return nil
			}
			return a.Factory.Close()
		},
	}
}
