// Package pgstore provides PostgreSQL-backed implementations of the
// entitlement storage interfaces using pgx/v5.
//
// The usage counter relies on a native atomic upsert
// (INSERT ... ON CONFLICT DO UPDATE SET count = count + 1) so that
// concurrent increments across multiple process instances serialize at the
// storage layer. Schema migrations for the backing tables live in
// internal/db/migrations and are applied with the pg package's Migrate.
//
// All stores share one *pgxpool.Pool constructed at process start:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	usage := pgstore.NewUsageStore(pool)
//	resolver, err := entitlement.NewPlanResolver(ctx,
//	    pgstore.NewPlanSource(pool), pgstore.NewAssignmentSource(pool))
package pgstore
