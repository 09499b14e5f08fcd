package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"clearurls/internal/config"
	"clearurls/pkg/rules"
)

func handleRules(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("rules subcommand required: validate | list | find | stats")
	}
	sub := args[0]
	switch sub {
	case "validate":
		return rulesOp("rules validate", args[1:], rulesValidate)
	case "list":
		return rulesOp("rules list", args[1:], rulesList)
	case "find":
		return rulesOp("rules find", args[1:], rulesFind)
	case "stats":
		return rulesOp("rules stats", args[1:], rulesStats)
	default:
		return fmt.Errorf("unknown rules subcommand: %s", sub)
	}
}

// rulesOp loads the rule set selected by --rules, rules.path or the bundled
// default, then hands it to fn along with the remaining arguments.
func rulesOp(name string, args []string, fn func(s *rules.Store, src string, args []string) error) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	rulesPath := fs.String("rules", "", "Rule document (JSON or YAML)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := *rulesPath
	if path == "" {
		c, err := config.LoadOrDefault(resolveConfigPath(*cfgPath))
		if err != nil {
			return err
		}
		path = c.Rules.Path
	}
	s, err := loadStore(path)
	if err != nil {
		return err
	}
	return fn(s, path, fs.Args())
}

func rulesValidate(s *rules.Store, path string, _ []string) error {
	size := int64(rules.EmbeddedSize())
	if path != "" {
		if fi, err := os.Stat(path); err == nil {
			size = fi.Size()
		}
	}
	warnings := 0
	for _, p := range s.Providers() {
		for _, re := range p.Redirections() {
			if re.NumSubexp() == 0 {
				warnings++
				fmt.Fprintf(stdout, "warning: provider %s: redirection %s has no capture group; matching URLs will fail to clean\n", p.Name(), re)
			}
		}
		if p.Pattern().String() == "(?i)" {
			warnings++
			fmt.Fprintf(stdout, "warning: provider %s: empty urlPattern matches every URL\n", p.Name())
		}
	}
	fmt.Fprintf(stdout, "rules: %s OK (%d providers, %s, %d warnings)\n", rulesSource(path), s.Len(), humanize.Bytes(uint64(size)), warnings)
	return nil
}

func rulesList(s *rules.Store, _ string, _ []string) error {
	fmt.Fprintf(stdout, "%-4s  %-24s  %5s  %5s  %5s  %5s  %5s\n", "#", "PROVIDER", "RULES", "RAW", "REF", "EXC", "REDIR")
	for i, p := range s.Providers() {
		fmt.Fprintf(stdout, "%-4d  %-24s  %5d  %5d  %5d  %5d  %5d\n", i+1, p.Name(),
			len(p.Rules()), len(p.RawRules()), len(p.ReferralMarketing()), p.Exceptions().Len(), len(p.Redirections()))
	}
	return nil
}

func rulesFind(s *rules.Store, _ string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: clearurls rules find <query>")
	}
	ranks := fuzzy.RankFindNormalizedFold(args[0], s.Names())
	if len(ranks) == 0 {
		return fmt.Errorf("no provider matches %q", args[0])
	}
	sort.Sort(ranks)
	providers := s.Providers()
	for _, r := range ranks {
		p := providers[r.OriginalIndex]
		fmt.Fprintf(stdout, "%-24s  %s\n", p.Name(), p.Pattern())
	}
	return nil
}

func rulesStats(s *rules.Store, path string, _ []string) error {
	var nRules, nRaw, nRef, nExc, nRedir int
	for _, p := range s.Providers() {
		nRules += len(p.Rules())
		nRaw += len(p.RawRules())
		nRef += len(p.ReferralMarketing())
		nExc += p.Exceptions().Len()
		nRedir += len(p.Redirections())
	}
	fmt.Fprintf(stdout, "Source:             %s\n", rulesSource(path))
	fmt.Fprintf(stdout, "Providers:          %s\n", humanize.Comma(int64(s.Len())))
	fmt.Fprintf(stdout, "Removal rules:      %s\n", humanize.Comma(int64(nRules)))
	fmt.Fprintf(stdout, "Raw rules:          %s\n", humanize.Comma(int64(nRaw)))
	fmt.Fprintf(stdout, "Referral rules:     %s\n", humanize.Comma(int64(nRef)))
	fmt.Fprintf(stdout, "Exceptions:         %s\n", humanize.Comma(int64(nExc)))
	fmt.Fprintf(stdout, "Redirections:       %s\n", humanize.Comma(int64(nRedir)))
	return nil
}
