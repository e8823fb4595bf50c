package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/shim"
	"go.uber.org/zap"
)

// detectConfigChanges notifies about writes to the configuration file.
// Directory is watched instead of the file, editors tend to replace files on save.
func detectConfigChanges(ctx context.Context, path string) (<-chan bool, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher failed: %w", err)
	}

	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching config directory failed: %w", err)
	}

	target := filepath.Clean(path)
	var change = make(chan bool, 1)

	go func() {
		<-ctx.Done()
		err := watcher.Close()
		if err != nil {
			log.Info(fmt.Sprintf("closing watcher failed: %v", err), logger.Debug)
		}
	}()

	go func() {
		defer close(change)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				select {
				case change <- true:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Info(fmt.Sprintf("config watcher error: %v", err), logger.Warning)
			}
		}
	}()

	return change, nil
}

// applyLiveParams copies parameters that can change without restart
func applyLiveParams(cfg PadshimConfig, params *shim.Config) error {
	err := params.SetDeadzone(cfg.Shim.Deadzone)
	if err != nil {
		return err
	}
	params.SetFilter(cfg.Shim.Filter)
	return nil
}

// reloadConfig re-reads the configuration file on every change, invalid files are ignored
func reloadConfig(wg *sync.WaitGroup, path string, changes <-chan bool, params *shim.Config) {
	defer wg.Done()

	for range changes {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Info(fmt.Sprintf("config reload failed: %v", err), logger.Warning)
			continue
		}

		cfg, err := ParseConfig(data)
		if err != nil {
			log.Info(fmt.Sprintf("config reload failed, keeping previous parameters: %v", err), logger.Warning)
			continue
		}

		err = applyLiveParams(cfg, params)
		if err != nil {
			log.Info(fmt.Sprintf("config reload failed, keeping previous parameters: %v", err), logger.Warning)
			continue
		}

		log.Info("config reloaded",
			zap.Float64("deadzone", params.Deadzone()),
			zap.String("filter", params.Filter().String()),
			logger.Info,
		)
	}
	log.Info("Config monitor stopped", logger.Debug)
}
