// Package syncer reconciles configured deck sources into a user's
// collection. Sources are directories (or git repositories mirrored into
// a cache) of deck files; each well-formed pair not yet in the collection
// becomes a new card through the manager's write-through path.
package syncer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/declanmoran/studydeck/internal/deck"
	"github.com/declanmoran/studydeck/internal/gitsource"
	"github.com/declanmoran/studydeck/internal/ingest"
)

// Result summarizes one sync pass.
type Result struct {
	Parsed   int
	Imported int
	Skipped  int
	Errors   []error
}

// Run scans every source and imports new cards. Previously imported cards
// are recognized by their content hash and skipped; cards that vanished
// from a source are left alone, since only an explicit delete removes a
// card from the collection.
func Run(mgr *deck.Manager, sources []string, cacheDir string, now time.Time) Result {
	var res Result
	if len(sources) == 0 {
		slog.Info("no deck sources configured")
		return res
	}

	seen := mgr.ImportedHashes()

	for _, source := range sources {
		path := source
		if gitsource.IsGitURL(source) {
			localPath, err := gitsource.LocalPath(cacheDir, source)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("resolving %s: %w", source, err))
				continue
			}
			if err := gitsource.Mirror(source, localPath); err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("mirroring %s: %w", source, err))
				continue
			}
			path = localPath
		}

		slog.Info("scanning deck source", "path", path)
		scanSource(mgr, path, seen, now, &res)
	}

	slog.Info("sync complete",
		"parsed", res.Parsed,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
	)
	return res
}

func scanSource(mgr *deck.Manager, root string, seen map[string]bool, now time.Time, res *Result) {
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isDeckFile(d.Name()) {
			return nil
		}

		pairs, parseErr := ingest.ParseFile(path)
		if parseErr != nil {
			res.Errors = append(res.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}

		for _, pair := range pairs {
			res.Parsed++
			hash := ingest.Hash(pair)
			if seen[hash] {
				res.Skipped++
				continue
			}

			if _, err := mgr.CreateImported(pair.Question, pair.Answer, pair.Topic, hash, now); err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("importing from %s: %w", path, err))
				continue
			}
			seen[hash] = true
			res.Imported++
		}
		return nil
	})

	if walkErr != nil {
		res.Errors = append(res.Errors, fmt.Errorf("walking %s: %w", root, walkErr))
	}
}

func isDeckFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".txt")
}
