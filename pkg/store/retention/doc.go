// Package retention bounds the size of a compile record store.
//
// A Pruner deletes records past a maximum age and beyond a maximum count. A
// Scheduler runs it on a cron schedule:
//
//	p := retention.NewPruner(st, cfg.Store.Retention, collector)
//	sched := retention.NewScheduler(p, cfg.Store.Retention.Schedule)
//	if err := sched.Start(ctx); err != nil {
//	    return err
//	}
//	defer sched.Stop()
package retention
