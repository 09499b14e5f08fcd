package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"clearurls/internal/config"
	friendly "clearurls/internal/errors"
	cw "clearurls/internal/tui/configwizard"
)

func handleConfig(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("config subcommand required: validate | print | wizard")
	}
	sub := args[0]
	switch sub {
	case "validate":
		return configOp("config validate", args[1:], func(c *config.Config, path string) error {
			if err := c.ValidateWithFriendlyErrors(); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "config: valid (%s)\n", path)
			return nil
		})
	case "print":
		return configOp("config print", args[1:], func(c *config.Config, _ string) error {
			b, err := c.Marshal()
			if err != nil {
				return err
			}
			_, err = stdout.Write(b)
			return err
		})
	case "wizard":
		return handleConfigWizard(ctx, args[1:])
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}

func configOp(name string, args []string, fn func(c *config.Config, path string) error) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := resolveConfigPath(*cfgPath)
	c, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}
	if _, serr := os.Stat(path); serr != nil {
		path = "defaults"
	}
	return fn(c, path)
}

func handleConfigWizard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("config wizard", flag.ContinueOnError)
	out := fs.String("out", "", "write YAML to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := tea.NewProgram(cw.New(config.Default()), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	wiz, ok := m.(*cw.Wizard)
	if !ok {
		return errors.New("unexpected model type from wizard")
	}
	cfg := wiz.Config()
	if cfg == nil {
		return errors.New("wizard aborted; no config written")
	}
	b, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = stdout.Write(b)
		return err
	}
	if err := config.EnsureDir(filepath.Dir(*out), 0o755); err != nil {
		return friendly.PathError(*out, err)
	}
	if err := os.WriteFile(*out, b, 0o644); err != nil {
		return friendly.PathError(*out, err)
	}
	fmt.Fprintf(stdout, "wrote config to %s\n", *out)
	return nil
}
