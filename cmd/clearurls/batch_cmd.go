package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"

	"clearurls/internal/batch"
	friendly "clearurls/internal/errors"
	"clearurls/internal/state"
)

func handleBatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	opts := addCommonFlags(fs)
	inPath := fs.String("input", "", "Text file with URLs (one per line, # comments), or a batch YAML with --from-yaml")
	fromYAML := fs.Bool("from-yaml", false, "Read --input as a batch YAML report and clean its url fields again")
	outPath := fs.String("output", "", "Output report YAML path (default: stdout)")
	parallel := fs.Int("parallel", 0, "Concurrent workers (default: batch.parallel from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("--input is required")
	}
	a, err := opts.open()
	if err != nil {
		return err
	}
	defer a.close()

	var items []batch.Item
	if *fromYAML {
		f, err := batch.Load(*inPath)
		if err != nil {
			return err
		}
		for i, it := range f.Items {
			items = append(items, batch.Item{Line: i + 1, URL: it.URL})
		}
	} else {
		in, err := inputFrom(*inPath)
		if err != nil {
			return err
		}
		items, err = batch.ReadLines(in)
		_ = in.Close()
		if err != nil {
			return err
		}
	}
	if len(items) == 0 {
		return errors.New("batch has no URLs")
	}

	workers := *parallel
	if workers <= 0 {
		workers = a.cfg.Batch.Parallel
	}
	a.log.Infof("cleaning %s URLs with %d workers", humanize.Comma(int64(len(items))), workers)

	// history writes are serialized; sqlite allows one writer at a time
	var mu sync.Mutex
	report, runErr := batch.Run(ctx, a.cleaner, items, workers, func(it batch.Item) {
		mu.Lock()
		defer mu.Unlock()
		a.observeItem(it)
	})
	if ctx.Err() != nil {
		return runErr
	}
	for _, e := range multierr.Errors(runErr) {
		a.log.Debugf("%v", e)
	}

	if *outPath == "" {
		if err := report.Write(stdout); err != nil {
			return err
		}
	} else if err := report.Save(*outPath); err != nil {
		return friendly.PathError(*outPath, err)
	}

	total, changed, failed := report.Summary()
	a.log.Infof("batch: %s total, %s changed, %s failed", humanize.Comma(int64(total)), humanize.Comma(int64(changed)), humanize.Comma(int64(failed)))
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs could not be cleaned (see report)", failed, total)
	}
	return nil
}

func (a *app) observeItem(it batch.Item) {
	var err error
	if it.Error != "" {
		err = errors.New(it.Error)
	}
	a.mx.Observe(it.Changed, err)
	if a.st == nil {
		return
	}
	row := state.HistoryRow{Original: it.URL, Cleaned: it.Cleaned, Changed: it.Changed, Source: "batch", LastError: it.Error}
	if rerr := a.st.RecordClean(row); rerr != nil {
		a.log.Warnf("history: %v", rerr)
	}
}
