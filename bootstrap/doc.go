// Package bootstrap wires a scribe process from its Settings.
//
// An App owns the infrastructure components (telemetry, result database,
// recording storage, enhancement client and backend factory), starts them in
// dependency order and stops them in reverse on shutdown.
//
//	app, err := bootstrap.New(settings)
//	if err != nil {
//		return err
//	}
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//		out := app.NewSession(app.NewJob(path)).Run(ctx)
//		return out.Err
//	})
package bootstrap
