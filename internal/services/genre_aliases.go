package services

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed genre_aliases.yaml
var defaultGenreAliases []byte

type genreAliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// GenreAliases maps user wording to Jikan genre names. The built-in table can
// be extended by a YAML file that is reloaded when it changes on disk.
type GenreAliases struct {
	mu       sync.RWMutex
	defaults map[string]string
	aliases  map[string]string
}

// NewGenreAliases loads the built-in alias table
func NewGenreAliases() *GenreAliases {
	defaults, err := parseGenreAliases(defaultGenreAliases)
	if err != nil {
		// the embedded table is part of the binary
		panic(fmt.Sprintf("invalid embedded genre aliases: %v", err))
	}
	return &GenreAliases{defaults: defaults, aliases: defaults}
}

func parseGenreAliases(data []byte) (map[string]string, error) {
	var file genreAliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse genre aliases: %w", err)
	}
	aliases := make(map[string]string, len(file.Aliases))
	for alias, genre := range file.Aliases {
		alias = normalizeGenreKey(alias)
		genre = strings.TrimSpace(genre)
		if alias == "" || genre == "" {
			continue
		}
		aliases[alias] = genre
	}
	return aliases, nil
}

func normalizeGenreKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Resolve returns the Jikan genre name for name, or name itself when no alias exists
func (g *GenreAliases) Resolve(name string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if genre, ok := g.aliases[normalizeGenreKey(name)]; ok {
		return genre
	}
	return strings.TrimSpace(name)
}

// Len returns the number of aliases currently loaded
func (g *GenreAliases) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.aliases)
}

// Load merges the YAML table in data over the built-in defaults, replacing
// any previously loaded file
func (g *GenreAliases) Load(data []byte) error {
	overrides, err := parseGenreAliases(data)
	if err != nil {
		return err
	}

	merged := make(map[string]string, len(g.defaults)+len(overrides))
	for alias, genre := range g.defaults {
		merged[alias] = genre
	}
	for alias, genre := range overrides {
		merged[alias] = genre
	}

	g.mu.Lock()
	g.aliases = merged
	g.mu.Unlock()
	return nil
}

// LoadFile reads and loads the YAML alias file at path
func (g *GenreAliases) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read genre aliases file: %w", err)
	}
	if err := g.Load(data); err != nil {
		return err
	}
	log.Printf("✅ Loaded genre aliases from %s (%d entries)", path, g.Len())
	return nil
}

// Watch reloads path whenever it is written or recreated, until ctx is done.
// The directory is watched rather than the file so editors that replace the
// file on save are still picked up.
func (g *GenreAliases) Watch(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", path)
	go g.watchLoop(ctx, watcher, absPath)
	return nil
}

func (g *GenreAliases) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, absPath string) {
	defer watcher.Close()

	filename := filepath.Base(absPath)
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, func() {
				log.Printf("🔄 Detected changes in %s, reloading genre aliases...", absPath)
				if err := g.LoadFile(absPath); err != nil {
					log.Printf("❌ Failed to reload genre aliases: %v", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  File watcher error: %v", err)
		}
	}
}
