package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"GEWatch/internal/config"
	"GEWatch/internal/display"
	"GEWatch/internal/geclient"
	"GEWatch/internal/scheduler"
	"GEWatch/internal/search"
	"GEWatch/internal/store"
)

const usage = `usage: gewatch [command]

commands:
  watch              poll tracked items on the configured interval (default)
  add <name>         start tracking an item
  remove <name>      stop tracking an item
  list               show tracked items and their last prices
  search <query>     fuzzy-search the item catalog
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env for local overrides; absence is not an error.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	client := geclient.New(cfg.API.BaseURL, cfg.API.UserAgent, cfg.Timeout())

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("[FATAL] create data dir: %v", err)
		}
	}
	st, err := store.Open(cfg.Database.Path, client)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := "watch"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	arg := strings.Join(os.Args[2:], " ")

	switch cmd {
	case "watch":
		runWatch(ctx, cancel, cfg, st)
	case "add":
		runAdd(ctx, st, arg)
	case "remove":
		runRemove(ctx, st, arg)
	case "list":
		runList(ctx, st)
	case "search":
		runSearch(ctx, client, arg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runWatch(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, st *store.Store) {
	sched := scheduler.New(ctx, st, nil)
	if err := sched.Register(cfg.Interval()); err != nil {
		log.Fatalf("[FATAL] register refresh: %v", err)
	}
	sched.Start()
	defer sched.Stop()
	sched.RunNow()

	log.Printf("[INFO] watching every %s, Ctrl+C to stop", cfg.Interval())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
}

func runAdd(ctx context.Context, st *store.Store, name string) {
	if name == "" {
		log.Fatal("[FATAL] add: item name required")
	}
	item, err := st.Add(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Fatalf("[ERROR] no such item: %q", name)
	case errors.Is(err, store.ErrNoData):
		log.Fatalf("[ERROR] no price data for %q yet", name)
	case err != nil:
		log.Fatalf("[ERROR] add %q: %v", name, err)
	}
	fmt.Printf("tracking %s (id %d) buy=%s sell=%s\n",
		item.Name, item.ID, display.FormatPrice(item.CurrentHigh), display.FormatPrice(item.CurrentLow))
}

func runRemove(ctx context.Context, st *store.Store, name string) {
	if name == "" {
		log.Fatal("[FATAL] remove: item name required")
	}
	if err := st.Remove(ctx, name); err != nil {
		log.Fatalf("[ERROR] remove %q: %v", name, err)
	}
	fmt.Printf("removed %s\n", name)
}

func runList(ctx context.Context, st *store.Store) {
	items, err := st.List(ctx)
	if err != nil {
		log.Fatalf("[ERROR] list: %v", err)
	}
	if len(items) == 0 {
		fmt.Println("no items tracked")
		return
	}
	for _, it := range items {
		fmt.Printf("%s (id %d): buy=%s sell=%s\n",
			it.Name, it.ID, display.FormatPrice(it.CurrentHigh), display.FormatPrice(it.CurrentLow))
	}
}

func runSearch(ctx context.Context, client *geclient.Client, query string) {
	if query == "" {
		log.Fatal("[FATAL] search: query required")
	}
	catalog, err := client.FetchCatalog(ctx)
	if err != nil {
		log.Fatalf("[ERROR] fetch catalog: %v", err)
	}
	matches := search.Rank(query, catalog, 10)
	if len(matches) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, m := range matches {
		fmt.Printf("%s (id %d)\n", m.Entry.Name, m.Entry.ID)
	}
}
