package scriptrt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hochfrequenz/build-annotator/internal/badge"
	"github.com/hochfrequenz/build-annotator/internal/domain"
	"rsc.io/script"
)

// Commands returns the script commands bound to api. Commands that add an
// entry print its index, so scripts can check it with stdout.
func Commands(api badge.API) map[string]script.Cmd {
	var summary *badge.SummaryBuilder

	return map[string]script.Cmd{
		"addShortText": command(
			script.CmdUsage{
				Summary: "add a short text badge",
				Args:    "text [color [background [border [borderColor]]]]",
				Detail:  []string{"Empty style arguments take the default plain short text look."},
			},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) < 1 || len(args) > 5 {
					return nil, script.ErrUsage
				}
				return printIndex(api.AddShortText(args[0], styleArgs(args[1:]))), nil
			}),

		"addShortTextLink": command(
			script.CmdUsage{
				Summary: "add a short text badge with a link",
				Args:    "text link [color [background [border [borderColor]]]]",
			},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) < 2 || len(args) > 6 {
					return nil, script.ErrUsage
				}
				return printIndex(api.AddShortTextLink(args[0], args[1], styleArgs(args[2:]))), nil
			}),

		"addHtmlBadge": command(
			script.CmdUsage{Summary: "add a badge holding a raw HTML fragment", Args: "html"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) != 1 {
					return nil, script.ErrUsage
				}
				return printIndex(api.AddHtmlBadge(args[0])), nil
			}),

		"addBadge": command(
			script.CmdUsage{Summary: "add an icon badge", Args: "icon text [link]"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) < 2 || len(args) > 3 {
					return nil, script.ErrUsage
				}
				link := ""
				if len(args) == 3 {
					link = args[2]
				}
				return printIndex(api.AddBadge(args[0], args[1], link)), nil
			}),

		"addInfoBadge":    semantic("add an info badge", api.AddInfoBadge),
		"addWarningBadge": semantic("add a warning badge", api.AddWarningBadge),
		"addErrorBadge":   semantic("add an error badge", api.AddErrorBadge),

		"removeBadge": command(
			script.CmdUsage{Summary: "remove the badge at index", Args: "index"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				i, err := indexArg(args)
				if err != nil {
					return nil, err
				}
				return nil, api.RemoveBadge(i)
			}),

		"removeBadges": command(
			script.CmdUsage{Summary: "remove all badges"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) != 0 {
					return nil, script.ErrUsage
				}
				api.RemoveBadges()
				return nil, nil
			}),

		"createSummary": command(
			script.CmdUsage{
				Summary: "start a new summary",
				Args:    "icon",
				Detail:  []string{"The summary is added on the first appendText or appendHtml."},
			},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) != 1 {
					return nil, script.ErrUsage
				}
				summary = api.CreateSummary(args[0])
				return nil, nil
			}),

		"appendText": command(
			script.CmdUsage{
				Summary: "append escaped text to the current summary",
				Args:    "text [bold] [italic] [underline] [color=C]",
			},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) < 1 {
					return nil, script.ErrUsage
				}
				if summary == nil {
					return nil, errNoSummary
				}
				var bold, italic, underline bool
				var color string
				for _, flag := range args[1:] {
					switch {
					case flag == "bold":
						bold = true
					case flag == "italic":
						italic = true
					case flag == "underline":
						underline = true
					case strings.HasPrefix(flag, "color="):
						color = strings.TrimPrefix(flag, "color=")
					default:
						return nil, fmt.Errorf("%w: unknown format %q", script.ErrUsage, flag)
					}
				}
				summary.AppendText(args[0], bold, italic, underline, color)
				return nil, nil
			}),

		"appendHtml": command(
			script.CmdUsage{Summary: "append a raw HTML fragment to the current summary", Args: "html"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) != 1 {
					return nil, script.ErrUsage
				}
				if summary == nil {
					return nil, errNoSummary
				}
				summary.AppendHtml(args[0])
				return nil, nil
			}),

		"removeSummary": command(
			script.CmdUsage{Summary: "remove the summary at index", Args: "index"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				i, err := indexArg(args)
				if err != nil {
					return nil, err
				}
				return nil, api.RemoveSummary(i)
			}),

		"removeSummaries": command(
			script.CmdUsage{Summary: "remove all summaries"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) != 0 {
					return nil, script.ErrUsage
				}
				api.RemoveSummaries()
				return nil, nil
			}),

		"buildIsA": command(
			script.CmdUsage{Summary: "fail unless the build carries the type tag", Args: "tag"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) != 1 {
					return nil, script.ErrUsage
				}
				if !api.BuildIsA(args[0]) {
					return nil, fmt.Errorf("build is not a %s", args[0])
				}
				return nil, nil
			}),

		"getEnvVariable": command(
			script.CmdUsage{Summary: "print a build environment variable", Args: "name"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) != 1 {
					return nil, script.ErrUsage
				}
				return printed(api.GetEnvVariable(args[0]) + "\n"), nil
			}),

		"logContains": command(
			script.CmdUsage{Summary: "fail unless a console line matches the pattern", Args: "regexp"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) != 1 {
					return nil, script.ErrUsage
				}
				ok, err := api.LogContains(args[0])
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, fmt.Errorf("no console line matches %q", args[0])
				}
				return nil, nil
			}),

		"buildFailure": command(
			script.CmdUsage{Summary: "mark the build as failed"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				api.BuildFailure()
				return nil, nil
			}),

		"buildUnstable": command(
			script.CmdUsage{Summary: "mark the build as unstable"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				api.BuildUnstable()
				return nil, nil
			}),
	}
}

// Conditions returns the script conditions bound to api
func Conditions(api badge.API) map[string]script.Cond {
	return map[string]script.Cond{
		"build": script.PrefixCondition("build carries the type tag <suffix>",
			func(_ *script.State, tag string) (bool, error) {
				return api.BuildIsA(tag), nil
			}),
		"env": script.PrefixCondition("build environment variable <suffix> is non-empty",
			func(_ *script.State, name string) (bool, error) {
				return api.GetEnvVariable(name) != "", nil
			}),
		"log": script.PrefixCondition("a console line matches the regexp <suffix>",
			func(_ *script.State, pattern string) (bool, error) {
				return api.LogContains(pattern)
			}),
	}
}

var errNoSummary = errors.New("no summary started; use createSummary first")

// command wraps run so it refuses to start once the script's context is done
func command(usage script.CmdUsage, run func(*script.State, ...string) (script.WaitFunc, error)) script.Cmd {
	return script.Command(usage, func(s *script.State, args ...string) (script.WaitFunc, error) {
		if err := s.Context().Err(); err != nil {
			return nil, err
		}
		return run(s, args...)
	})
}

func semantic(summary string, add func(string) int) script.Cmd {
	return command(script.CmdUsage{Summary: summary, Args: "text"},
		func(s *script.State, args ...string) (script.WaitFunc, error) {
			if len(args) != 1 {
				return nil, script.ErrUsage
			}
			return printIndex(add(args[0])), nil
		})
}

func styleArgs(args []string) domain.BadgeStyle {
	var style domain.BadgeStyle
	fields := []*string{&style.Color, &style.Background, &style.Border, &style.BorderColor}
	for i, v := range args {
		*fields[i] = v
	}
	return style
}

func indexArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, script.ErrUsage
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: index %q is not a number", script.ErrUsage, args[0])
	}
	return i, nil
}

func printIndex(i int) script.WaitFunc {
	return printed(strconv.Itoa(i) + "\n")
}

func printed(stdout string) script.WaitFunc {
	return func(*script.State) (string, string, error) {
		return stdout, "", nil
	}
}
