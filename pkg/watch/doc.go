// Package watch reports changes to bitmark sources below a directory.
//
// A Watcher follows a directory tree with fsnotify, including directories
// created after it starts. Bursts of events on one file are collapsed by a
// Debouncer so that editors writing a file in several steps cause a single
// recompilation.
//
//	w, err := watch.New(watch.FromConfig("lessons", cfg.Watch), logger)
//	if err != nil {
//	    return err
//	}
//	err = w.Watch(ctx, func(ctx context.Context, ev watch.Event) {
//	    // recompile ev.Path
//	})
package watch
