package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a viewer configuration file.
type File struct {
	Stream   StreamSettings   `yaml:"stream"`
	WorldGen WorldGenSettings `yaml:"world_gen"`
}

// Load reads a YAML configuration file. Missing keys keep their defaults.
func Load(path string) (File, error) {
	f := File{
		Stream:   DefaultStreamSettings(),
		WorldGen: DefaultWorldGenSettings(),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Apply installs f as the global settings.
func Apply(f File) {
	SetStream(f.Stream)
	SetWorldGen(f.WorldGen)
}

// LoadAndApply loads path and installs it.
func LoadAndApply(path string) error {
	f, err := Load(path)
	if err != nil {
		return err
	}
	Apply(f)
	return nil
}

// Watch reloads the stream settings whenever path is written, until ctx is done.
// Generation settings are not hot-reloaded: chunks already built would disagree
// with new ones. onReload, if non-nil, is called after each successful reload.
func Watch(ctx context.Context, path string, onReload func(StreamSettings)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors often replace the file instead of writing it
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}
	target := filepath.Clean(path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				f, err := Load(path)
				if err != nil {
					log.Printf("config: reload %s: %v", path, err)
					continue
				}
				SetStream(f.Stream)
				log.Printf("config: reloaded %s", path)
				if onReload != nil {
					onReload(Stream())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("config: watcher: %v", err)
			}
		}
	}()
	return nil
}
