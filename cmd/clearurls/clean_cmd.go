package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	friendly "clearurls/internal/errors"
)

// cleanRecord is one line of `clean --format json` output.
type cleanRecord struct {
	URL     string `json:"url"`
	Cleaned string `json:"cleaned,omitempty"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

func handleClean(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	opts := addCommonFlags(fs)
	format := fs.String("format", "text", "Output format: text|json (one JSON object per URL)")
	onlyChanged := fs.Bool("only-changed", false, "Print only URLs that were rewritten")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "text" && *format != "json" {
		return fmt.Errorf("unknown format: %s", *format)
	}
	a, err := opts.open()
	if err != nil {
		return err
	}
	defer a.close()

	urls := fs.Args()
	if len(urls) == 0 {
		if urls, err = readURLLines(stdin); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(stdout)
	var errs error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, cerr := a.cleaner.CleanURL(u)
		a.observe("clean", u, res, cerr)
		if cerr != nil {
			errs = multierr.Append(errs, friendly.URLError(u, cerr))
		}
		if *onlyChanged && !res.Changed {
			continue
		}
		if *format == "json" {
			rec := cleanRecord{URL: u, Cleaned: res.URL, Changed: res.Changed}
			if cerr != nil {
				rec.Error = cerr.Error()
			}
			if err := enc.Encode(rec); err != nil {
				return err
			}
			continue
		}
		if cerr == nil {
			fmt.Fprintln(stdout, res.URL)
		}
	}
	return errs
}

func readURLLines(r io.Reader) ([]string, error) {
	var out []string
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, s.Err()
}

func handleText(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("text", flag.ContinueOnError)
	opts := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := opts.open()
	if err != nil {
		return err
	}
	defer a.close()

	in, err := inputFrom(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()
	b, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	out, err := a.cleaner.CleanText(string(b))
	if err != nil {
		for _, e := range multierr.Errors(err) {
			a.mx.Observe(false, e)
			a.log.Warnf("%v", e)
		}
		return fmt.Errorf("%d URL(s) could not be cleaned; text left unchanged", len(multierr.Errors(err)))
	}
	_, err = io.WriteString(stdout, out)
	return err
}

func handleHTML(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	opts := addCommonFlags(fs)
	outPath := fs.String("out", "", "Write the cleaned document here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := opts.open()
	if err != nil {
		return err
	}
	defer a.close()

	in, err := inputFrom(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	var sb strings.Builder
	if err := a.cleaner.CleanHTML(in, &sb); err != nil {
		for _, e := range multierr.Errors(err) {
			a.mx.Observe(false, e)
			a.log.Warnf("%v", e)
		}
		return err
	}
	if *outPath == "" {
		_, err = io.WriteString(stdout, sb.String())
		return err
	}
	if err := os.WriteFile(*outPath, []byte(sb.String()), 0o644); err != nil {
		return friendly.PathError(*outPath, err)
	}
	a.log.Infof("wrote %s", *outPath)
	return nil
}
