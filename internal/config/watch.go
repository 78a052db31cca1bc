// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	cfgtypes "nativehints.apache.org/nativehints-go/internal/types/config"
)

const reloadDelay = 300 * time.Millisecond

// WatchConfigAndReload watches the config file and calls onReload with every
// successfully loaded and validated revision. It returns when ctx is done.
func (l *Loader) WatchConfigAndReload(ctx context.Context, onReload func(*cfgtypes.BuildConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		l.logger.Error(err, "failed to create config watcher")
		return err
	}
	defer watcher.Close()

	// Watch both the file and its directory to handle symlink swaps (Kubernetes ConfigMap)
	cfgFile := l.cfgPath
	cfgDir := filepath.Dir(cfgFile)

	if err := watcher.Add(cfgDir); err != nil {
		l.logger.Error(err, "failed to watch config directory", "dir", cfgDir)
		return err
	}

	l.logger.Info("config file watcher started", "path", cfgFile)

	// Debounce: events restart the timer, the reload runs once things settle.
	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("config watcher stopped")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(cfgFile) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer.Reset(reloadDelay)

		case <-timer.C:
			l.logger.Info("config file changed, reloading")
			cfg, err := l.Load()
			if err != nil {
				l.logger.Error(err, "failed to reload config, keeping the previous revision")
				continue
			}
			onReload(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Error(err, "config watcher error")
		}
	}
}
