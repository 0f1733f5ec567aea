// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gitforge/internal/meta"
)

const bashCompletionScript = `# bash completion for gitforge
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_gitforge_names()
{
    gitforge list "$1" --output raw 2>/dev/null
}

_gitforge()
{
    local cur prev cmd kind
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "add list preview cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    kind=${COMP_WORDS[2]}

    if [[ ${COMP_CWORD} -eq 2 ]]; then
        case "$cmd" in
        add|list|ls|preview|show)
            COMPREPLY=( $(compgen -W "gitignore issue pr license" -- "$cur") )
            ;;
        cache)
            COMPREPLY=( $(compgen -W "list info path clear refresh" -- "$cur") )
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            ;;
        esac
        return 0
    fi

    if [[ "$prev" == "--output" || "$prev" == "-o" ]] && [[ "$cmd" == list || "$cmd" == ls || "$cmd" == cache ]]; then
        COMPREPLY=( $(compgen -W "text json yaml toml raw" -- "$cur") )
        return 0
    fi

    local opts="--update-cache -u"
    case "$cmd" in
    add)
        opts="$opts --dir -d --output -o --force -f"
        case "$kind" in
        gitignore) opts="$opts --append -a --all" ;;
        license) opts="$opts --param -p --interactive -i" ;;
        esac
        ;;
    list|ls)
        opts="$opts --color -c --filter -f --output -o --sort -s --titles -t"
        case "$kind" in
        gitignore) opts="$opts --root --global -g --community" ;;
        license) opts="$opts --popular -p --search" ;;
        esac
        ;;
    preview|show)
        [[ "$kind" == license ]] && opts="$opts --param -p"
        ;;
    cache)
        case "$kind" in
        clear) opts="--all" ;;
        refresh) opts="--diff gitignore issue pr license" ;;
        list|ls) opts="--color -c --filter -f --output -o --sort -s --titles -t" ;;
        *) opts="" ;;
        esac
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
        ;;
    esac

    if [[ "$cur" == -* || "$cmd" == list || "$cmd" == ls ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$(_gitforge_names "$kind")" -- "$cur") )
    return 0
}

complete -F _gitforge gitforge
`

const zshCompletionScript = `#compdef gitforge

_gitforge() {
  local -a cmds kinds
  cmds=(
    'add:add templates to the repository'
    'list:list available templates'
    'preview:print templates without writing them'
    'cache:inspect and manage the template index cache'
    'completion:generate shell completion script'
  )
  kinds=(gitignore issue pr license)

  local -a listing
  listing=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml toml raw)'
  '(-s --sort)'{-s,--sort}'[sort columns]:columns'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '(-u --update-cache)'{-u,--update-cache}'[refresh the template index]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'gitforge commands' cmds
    return
  fi

  if (( CURRENT == 3 )); then
    case $words[2] in
      add|list|ls|preview|show) _values 'kind' $kinds ;;
      cache) _values 'cache command' list info path clear refresh ;;
      completion) _values 'shell' bash zsh ;;
    esac
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    add)
      _arguments -C \
        '(-d --dir)'{-d,--dir}'[directory to write into]:dir:_directories' \
        '*'{-o,--output}'[output file names]:file:_files' \
        '(-f --force)'{-f,--force}'[overwrite existing files]' \
        '(-u --update-cache)'{-u,--update-cache}'[refresh the template index]' \
        '(-a --append)'{-a,--append}'[append to .gitignore]' \
        '--all[add every gitignore template]' \
        '*'{-p,--param}'[license placeholder key=value]:param' \
        '(-i --interactive)'{-i,--interactive}'[prompt for placeholders]' \
        '*:template:->names'
      ;;
    list|ls)
      _arguments -C \
        $listing \
        '--root[only top level gitignore templates]' \
        '(-g --global)'{-g,--global}'[only Global gitignore templates]' \
        '--community[only community gitignore templates]' \
        '--popular[only featured licenses]' \
        '--search[search licenses]:term'
      ;;
    preview|show)
      _arguments -C \
        '(-u --update-cache)'{-u,--update-cache}'[refresh the template index]' \
        '*'{-p,--param}'[license placeholder key=value]:param' \
        '*:template:->names'
      ;;
    cache)
      _arguments -C $listing '--all[remove every cache]' '--diff[show what changed]' '*:name:(gitignore issue pr license)'
      ;;
  esac

  if [[ $state == names ]]; then
    local -a names
    names=(${(f)"$(gitforge list $words[3] --output raw 2>/dev/null)"})
    _describe -t templates 'templates' names
  fi
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _gitforge gitforge
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}

	out := stdout(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(out, bashCompletionScript)
	case "zsh":
		fmt.Fprint(out, zshCompletionScript)
	case "":
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(out, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(out, bashCompletionScript)
		} else {
			fmt.Fprintln(stderr(cmd), "usage: gitforge completion [bash|zsh]")
		}
	default:
		return fmt.Errorf("unsupported shell %q, expected bash or zsh", shell)
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "gitforge completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
