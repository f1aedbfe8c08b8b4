// Package pg bootstraps the PostgreSQL layer for the entitlement stores:
// a pgxpool.Pool with retrying Connect, goose migrations for the
// usage_counters/plans/user_plan_assignments schema, a healthcheck closure,
// and error classification helpers.
//
// The pool is constructed once at process start and passed explicitly into
// the stores that need it:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    panic(err)
//	}
package pg
