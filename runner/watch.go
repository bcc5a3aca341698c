package runner

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-applies the bundle each time one of its resources' watched
// external paths changes on disk, on top of the mandatory, single
// idempotent Run pass. It blocks until the watcher errors or stop is
// closed.
//
// A path that does not yet exist (e.g. a config file a prior Run will
// create) is watched on its parent directory instead, the way fsnotify
// itself recommends for paths that may not exist at watch-setup time.
func (r *Runner) Watch(stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, path := range r.watchedPaths() {
		target := path
		if !r.plat.Exists(path) {
			target = filepath.Dir(path)
		}
		if err := watcher.Add(target); err != nil && r.logger != nil {
			r.logger.Sugar().Warnf("watch: cannot watch %q: %v", target, err)
		}
	}

	for {
		select {
		case <-stop:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := r.Run(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// watchedPaths collects the distinct external paths any resource in the
// bundle declares via Changes(), the same set bundle.Add uses to
// synthesize implicit watched Files.
func (r *Runner) watchedPaths() []string {
	seen := map[string]bool{}
	var paths []string
	for _, res := range r.bundle.Resources() {
		for _, path := range res.Changes() {
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}
	return paths
}
