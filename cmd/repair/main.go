package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"projectadmin/internal/amenities"
	"projectadmin/internal/archive"
	"projectadmin/internal/config"
	"projectadmin/internal/logging"
	"projectadmin/internal/projects"
	"projectadmin/internal/reconcile"
	"projectadmin/internal/storage"
)

// dropLogger reports catalog drift found while decoding.
type dropLogger struct {
	log logging.Logger
	id  string
}

func (d *dropLogger) ReportDrift(ids []amenities.SelectionID) {
	d.log.Warn(context.Background(), "dropped amenity ids missing from catalog", "id", d.id, "dropped", ids)
}

type options struct {
	configPath string
	id         string
	apply      bool
	plans      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&opts.id, "id", "", "Repair a single project by id")
	flag.BoolVar(&opts.apply, "apply", false, "Archive originals and write repaired records (default is a dry run)")
	flag.BoolVar(&opts.plans, "plans", false, "Also migrate flat payment plans")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		log.Fatal(err)
	}
}

// run repairs the selected projects. It never exits the process.
func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database_url is required in config to repair projects")
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer store.Close()

	archiver, err := archive.New(ctx, archive.Config(cfg.Archive))
	if err != nil {
		return fmt.Errorf("init archive: %w", err)
	}

	ids := []string{opts.id}
	if opts.id == "" {
		list, err := store.ListProjects(ctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		ids = ids[:0]
		for _, p := range list {
			ids = append(ids, p.ID)
		}
	}

	repairOpts := reconcile.RepairOptions{PaymentPlans: opts.plans}
	var changed, failed int
	for _, projectID := range ids {
		drift := &dropLogger{log: logger, id: projectID}
		r := reconcile.Reconciler{Codec: amenities.Codec{Drift: drift}}

		outcome, err := projects.RepairProject(ctx, store, archiver, r, projectID, repairOpts, opts.apply)
		if errors.Is(err, archive.ErrArchiveDisabled) {
			return errors.New("archive is not configured; refusing to rewrite (set ARCHIVE_LOCAL_DIR or ARCHIVE_BUCKET)")
		}
		if err != nil {
			failed++
			logger.Error(ctx, "repair failed", "id", projectID, "err", err)
			continue
		}
		if len(outcome.Changes) == 0 {
			continue
		}
		changed++
		fmt.Printf("%-40s %-30s %s\n", projectID, outcome.Project.Name, describe(outcome, opts.apply))
	}

	verb := "would change"
	if opts.apply {
		verb = "changed"
	}
	fmt.Printf("%d of %d projects %s, %d failed\n", changed, len(ids), verb, failed)
	if failed > 0 {
		return fmt.Errorf("%d projects failed to repair", failed)
	}
	return nil
}

func describe(outcome projects.RepairOutcome, applied bool) string {
	keys := make([]string, 0, len(outcome.Changes))
	for _, c := range outcome.Changes {
		keys = append(keys, c.Key)
	}
	out := strings.Join(keys, ",")
	if applied {
		out += " archived=" + strings.Join(outcome.Archived, ",")
	}
	return out
}
