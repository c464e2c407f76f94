package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/declanmoran/studydeck/internal/config"
	"github.com/declanmoran/studydeck/internal/deck"
	"github.com/declanmoran/studydeck/internal/mindmap"
	"github.com/declanmoran/studydeck/internal/store"
	"github.com/declanmoran/studydeck/internal/syncer"
	"github.com/declanmoran/studydeck/internal/web"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store, err)
	}
	defer st.Close()

	mgr, err := deck.Open(st, cfg.User)
	if err != nil {
		// The manager is still usable with an empty collection; warn so the
		// user knows previously saved cards may not have loaded.
		slog.Warn("could not load saved cards, starting empty", "user", cfg.User, "error", err)
	}

	tree := loadTree(st, cfg.User)

	switch {
	case cfg.Sync:
		res := syncer.Run(mgr, cfg.Sources, cfg.CacheDir, time.Now())
		fmt.Printf("Parsed %d cards: %d imported, %d already known, %d errors.\n",
			res.Parsed, res.Imported, res.Skipped, len(res.Errors))
		for _, e := range res.Errors {
			fmt.Printf("- %v\n", e)
		}

	case cfg.Serve:
		srv, err := web.NewServer(mgr, tree, st)
		if err != nil {
			log.Fatalf("Failed to build web server: %v", err)
		}
		slog.Info("serving studydeck", "addr", cfg.Listen, "user", cfg.User)
		if err := http.ListenAndServe(cfg.Listen, srv); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}

	default:
		due := mgr.Due(time.Now())
		fmt.Printf("%s: %d cards, %d due for review.\n", cfg.User, mgr.Len(), len(due))
		for _, c := range due {
			fmt.Printf("- [%s] %s\n", c.Topic, c.Question)
		}
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case "sqlite":
		return store.OpenSQLite(cfg.DBPath)
	case "snapshot":
		return store.OpenSnapshot(cfg.DataDir)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
}

func loadTree(st store.Store, userKey string) *mindmap.Tree {
	records, err := st.LoadTree(userKey)
	if err != nil {
		slog.Warn("could not load saved mind map, starting empty", "user", userKey, "error", err)
		return mindmap.NewTree()
	}
	if len(records) == 0 {
		return mindmap.NewTree()
	}
	tree, err := mindmap.FromRecords(records)
	if err != nil {
		slog.Warn("saved mind map is malformed, starting empty", "user", userKey, "error", err)
		return mindmap.NewTree()
	}
	return tree
}
