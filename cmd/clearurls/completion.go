package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
)

func handleCompletion(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: clearurls completion [bash|zsh|fish]")
	}
	shell := fs.Arg(0)
	switch shell {
	case "bash":
		_, _ = io.WriteString(stdout, bashCompletion)
	case "zsh":
		_, _ = io.WriteString(stdout, zshCompletion)
	case "fish":
		_, _ = io.WriteString(stdout, fishCompletion)
	default:
		return fmt.Errorf("unknown shell: %s", shell)
	}
	return nil
}

const bashCompletion = `# bash completion for clearurls
_clearurls_completions()
{
    local cur prev words cword
    _init_completion || return
    local cmds="clean text html batch rules history config doctor tui version help completion"
    local common="--config --log-level --json --rules --strip-referral"
    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "${cmds}" -- "$cur") )
        return
    fi
    case ${words[1]} in
        clean)
            COMPREPLY=( $(compgen -W "${common} --format --only-changed" -- "$cur") ) ;;
        text)
            COMPREPLY=( $(compgen -W "${common}" -- "$cur") ) ;;
        html)
            COMPREPLY=( $(compgen -W "${common} --out" -- "$cur") ) ;;
        batch)
            COMPREPLY=( $(compgen -W "${common} --input --from-yaml --output --parallel" -- "$cur") ) ;;
        rules)
            COMPREPLY=( $(compgen -W "validate list find stats --config --rules" -- "$cur") ) ;;
        history)
            COMPREPLY=( $(compgen -W "--config --limit --host --changed --failed --summary --clear --older-than --full" -- "$cur") ) ;;
        config)
            COMPREPLY=( $(compgen -W "validate print wizard --config --out" -- "$cur") ) ;;
        doctor)
            COMPREPLY=( $(compgen -W "--config --verbose" -- "$cur") ) ;;
        tui)
            COMPREPLY=( $(compgen -W "${common}" -- "$cur") ) ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") ) ;;
        *) ;;
    esac
}
complete -F _clearurls_completions clearurls
`

const zshCompletion = `#compdef clearurls
# zsh completion for clearurls (basic)
_clearurls() {
  local -a cmds
  cmds=(clean text html batch rules history config doctor tui version help completion)
  if (( CURRENT == 2 )); then
    _describe 'command' cmds
    return
  fi
  case $words[2] in
    clean)
      _arguments '*:options:(--config --log-level --json --rules --strip-referral --format --only-changed)'
      ;;
    text)
      _arguments '*:options:(--config --log-level --json --rules --strip-referral)'
      ;;
    html)
      _arguments '*:options:(--config --log-level --json --rules --strip-referral --out)'
      ;;
    batch)
      _arguments '*:options:(--config --log-level --json --rules --strip-referral --input --from-yaml --output --parallel)'
      ;;
    rules)
      _arguments '*:options:(validate list find stats --config --rules)'
      ;;
    history)
      _arguments '*:options:(--config --limit --host --changed --failed --summary --clear --older-than --full)'
      ;;
    config)
      _arguments '*:options:(validate print wizard --config --out)'
      ;;
    doctor)
      _arguments '*:options:(--config --verbose)'
      ;;
    tui)
      _arguments '*:options:(--config --log-level --rules --strip-referral)'
      ;;
    completion)
      _arguments '*:options:(bash zsh fish)'
      ;;
  esac
}
compdef _clearurls clearurls
`

const fishCompletion = `# fish completion for clearurls
complete -c clearurls -f -n "__fish_use_subcommand" -a "clean" -d "clean URLs"
complete -c clearurls -f -n "__fish_use_subcommand" -a "text" -d "clean URLs in text"
complete -c clearurls -f -n "__fish_use_subcommand" -a "html" -d "clean links in HTML"
complete -c clearurls -f -n "__fish_use_subcommand" -a "batch" -d "clean a URL list"
complete -c clearurls -f -n "__fish_use_subcommand" -a "rules" -d "inspect rules"
complete -c clearurls -f -n "__fish_use_subcommand" -a "history" -d "show history"
complete -c clearurls -f -n "__fish_use_subcommand" -a "config" -d "config ops"
complete -c clearurls -f -n "__fish_use_subcommand" -a "doctor" -d "diagnostics"
complete -c clearurls -f -n "__fish_use_subcommand" -a "tui" -d "interactive cleaner"
complete -c clearurls -f -n "__fish_use_subcommand" -a "version" -d "print version"
complete -c clearurls -f -n "__fish_use_subcommand" -a "completion" -d "shell completions"

# Common flags
for cmd in clean text html batch tui
  complete -c clearurls -n "__fish_seen_subcommand_from $cmd" -l config -d "Path to config"
  complete -c clearurls -n "__fish_seen_subcommand_from $cmd" -l log-level -d "Log level"
  complete -c clearurls -n "__fish_seen_subcommand_from $cmd" -l rules -d "Rule document"
  complete -c clearurls -n "__fish_seen_subcommand_from $cmd" -l strip-referral -d "Remove referral codes"
end
complete -c clearurls -n "__fish_seen_subcommand_from clean" -l format -d "text|json"
complete -c clearurls -n "__fish_seen_subcommand_from clean" -l only-changed -d "Only print changed URLs"
complete -c clearurls -n "__fish_seen_subcommand_from html" -l out -d "Output file"
complete -c clearurls -n "__fish_seen_subcommand_from batch" -l input -d "Text file with URLs"
complete -c clearurls -n "__fish_seen_subcommand_from batch" -l from-yaml -d "Re-run a batch report"
complete -c clearurls -n "__fish_seen_subcommand_from batch" -l output -d "Report YAML"
complete -c clearurls -n "__fish_seen_subcommand_from batch" -l parallel -d "Workers"
complete -c clearurls -n "__fish_seen_subcommand_from rules" -a "validate list find stats"
complete -c clearurls -n "__fish_seen_subcommand_from history" -l host -d "Filter by host"
complete -c clearurls -n "__fish_seen_subcommand_from history" -l changed -d "Only rewritten URLs"
complete -c clearurls -n "__fish_seen_subcommand_from history" -l failed -d "Only failures"
complete -c clearurls -n "__fish_seen_subcommand_from history" -l summary -d "Totals and top hosts"
complete -c clearurls -n "__fish_seen_subcommand_from history" -l clear -d "Delete history"
complete -c clearurls -n "__fish_seen_subcommand_from config" -a "validate print wizard"
complete -c clearurls -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
