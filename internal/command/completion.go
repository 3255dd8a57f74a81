// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/meta"
)

const bashCompletionScript = `# bash completion for webstack
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_webstack()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "up preview refresh destroy outputs verify render completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local target="--stack -S --project --region --backend --profile --passphrase --config"
    local output="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t"
    local site="--dir --name"

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml raw" -- "$cur") )
            return 0
            ;;
        --dir|--config)
            COMPREPLY=( $(compgen -d -- "$cur") )
            return 0
            ;;
        --kind)
            COMPREPLY=( $(compgen -W "public-read trust logging" -- "$cur") )
            return 0
            ;;
    esac

    case "$cmd" in
        up)
            COMPREPLY=( $(compgen -W "$target $output $site --yes -y --quiet -q --refresh --preflight --no-preflight --show-secrets" -- "$cur") )
            ;;
        preview)
            COMPREPLY=( $(compgen -W "$target $output $site --quiet -q" -- "$cur") )
            ;;
        refresh)
            COMPREPLY=( $(compgen -W "$target $output $site --yes -y --quiet -q" -- "$cur") )
            ;;
        destroy)
            COMPREPLY=( $(compgen -W "$target $output $site --yes -y --quiet -q --remove" -- "$cur") )
            ;;
        outputs)
            COMPREPLY=( $(compgen -W "$target $output $site --cached --show-secrets --quiet -q" -- "$cur") )
            ;;
        verify)
            COMPREPLY=( $(compgen -W "$target $output $site --cached --quiet -q" -- "$cur") )
            ;;
        render)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "policy gateway runtime-config assets graph" -- "$cur") )
            else
                COMPREPLY=( $(compgen -W "$output $site --kind --bucket --arn --api-url --dot" -- "$cur") )
            fi
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            ;;
    esac
    return 0
}
complete -F _webstack webstack
`

const zshCompletionScript = `#compdef webstack

_webstack() {
  local -a commands
  commands=(
    'up:create or update the website stack'
    'preview:show the changes an update would make'
    'refresh:reconcile stack state with the cloud'
    'destroy:delete every resource in the stack'
    'outputs:show stack outputs'
    'verify:check the deployed website against its configuration'
    'render:render the documents and plan an update would use'
    'completion:generate shell completion script'
  )

  local -a target output site
  target=(
    '(-S --stack)'{-S,--stack}'[stack]:stack:'
    '--project[project]:project:'
    '--region[AWS region]:region:'
    '--backend[state backend URL]:url:'
    '--profile[AWS profile]:profile:'
    '--passphrase[secrets passphrase]:passphrase:'
    '--config[config file]:file:_files'
  )
  output=(
    '(-a --attrs)'{-a,--attrs}'[attributes]:attrs:'
    '(-c --color)'{-c,--color}'[color]'
    '(-f --filter)'{-f,--filter}'[filter]:filter:'
    '(-o --output)'{-o,--output}'[output format]:format:(text json yaml raw)'
    '(-s --sort)'{-s,--sort}'[sort]:sort:'
    '(-t --titles)'{-t,--titles}'[titles]'
  )
  site=(
    '--dir[site directory]:dir:_directories'
    '--name[resource name prefix]:name:'
  )

  if (( CURRENT == 2 )); then
    _describe 'command' commands
    return
  fi

  case "$words[2]" in
    up)
      _arguments $target $output $site \
        '(-y --yes)'{-y,--yes}'[skip confirmation]' \
        '(-q --quiet)'{-q,--quiet}'[no progress]' \
        '--refresh[refresh first]' \
        '--show-secrets[show secrets]'
      ;;
    preview)
      _arguments $target $output $site '(-q --quiet)'{-q,--quiet}'[no progress]'
      ;;
    refresh)
      _arguments $target $output $site \
        '(-y --yes)'{-y,--yes}'[skip confirmation]' \
        '(-q --quiet)'{-q,--quiet}'[no progress]'
      ;;
    destroy)
      _arguments $target $output $site \
        '(-y --yes)'{-y,--yes}'[skip confirmation]' \
        '(-q --quiet)'{-q,--quiet}'[no progress]' \
        '--remove[remove the stack]'
      ;;
    outputs|verify)
      _arguments $target $output $site '--cached[use cached outputs]' '--show-secrets[show secrets]'
      ;;
    render)
      if (( CURRENT == 3 )); then
        _values 'render' policy gateway runtime-config assets graph
      else
        _arguments $output $site \
          '--kind[policy kind]:kind:(public-read trust logging)' \
          '--bucket[bucket id]:bucket:' \
          '*--arn[function ARN]:arn:' \
          '--api-url[invoke URL]:url:' \
          '--dot[graphviz output]'
      fi
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _webstack webstack
`

func CompletionCommandAction(_ context.Context, cmd *cli.Command) error {
	w := writer(cmd)

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	case "":
		fmt.Fprintln(os.Stderr, "usage: webstack completion [bash|zsh]")
	default:
		if err := FlagValidators(shell, ShellValidator); err != nil {
			return err
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "webstack completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
