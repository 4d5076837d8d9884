// Package bootstrap runs a fetchkit program through a uniform lifecycle:
// start the registered components, run hooks, run the task, then stop the
// components in reverse order within a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(httpclient.NewComponent(cfg.HTTP))
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    ...
//	})
//
// SIGINT and SIGTERM cancel the task's context.
package bootstrap
