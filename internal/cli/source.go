package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	"github.com/macropower/alsroute/api/v1beta1/configs"
	"github.com/macropower/alsroute/pkg/batch"
	"github.com/macropower/alsroute/pkg/log"
	"github.com/macropower/alsroute/pkg/rules"
	"github.com/macropower/alsroute/pkg/sheet"
)

// ErrGroupRequired is returned when a group must be chosen but no terminal is
// available to ask.
var ErrGroupRequired = rules.ErrGroupRequired

// rulesProvider resolves destination groups and rule sources from either the
// configured groups or a rule sheet.
type rulesProvider struct {
	cfg   *configs.Config
	sheet *sheet.Cache
}

func newRulesProvider(cfg *configs.Config) (*rulesProvider, error) {
	p := &rulesProvider{cfg: cfg}
	if !cfg.Sheet.Enabled() {
		return p, nil
	}

	cache, err := cfg.Sheet.Loader()
	if err != nil {
		return nil, fmt.Errorf("configure sheet: %w", err)
	}

	p.sheet = cache

	return p, nil
}

// Origin describes where groups come from.
func (p *rulesProvider) Origin() string {
	if p.sheet != nil {
		return "sheet " + p.cfg.Sheet.Source()
	}

	return "config"
}

// Groups lists the available destination groups.
func (p *rulesProvider) Groups(ctx context.Context) ([]string, error) {
	if p.sheet == nil {
		return p.cfg.GroupNames(), nil
	}

	table, err := p.sheet.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sheet: %w", err)
	}

	return table.Groups, nil
}

// Source returns a [batch.SourceFunc] for group. Sheet sources are rebuilt
// from the cached table on every call.
func (p *rulesProvider) Source(group string) batch.SourceFunc {
	if p.sheet == nil {
		return func(context.Context) (rules.Source, error) {
			g, err := p.cfg.Group(group)
			if err != nil {
				return nil, err //nolint:wrapcheck // Already describes the group.
			}

			src, err := g.Source()
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", group, err)
			}

			return src, nil
		}
	}

	return func(ctx context.Context) (rules.Source, error) {
		table, err := p.sheet.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load sheet: %w", err)
		}

		src, warnings, err := rules.NewTableSource(table, group, p.cfg.Sheet.Aliases)
		if err != nil {
			return nil, err //nolint:wrapcheck // Already describes the group.
		}

		logger := log.WithContext(ctx)
		for _, w := range warnings {
			logger.WarnContext(ctx, "derive channel map", slog.Any("err", w))
		}

		return src, nil
	}
}

// selectGroup returns the group to route for. Without an explicit group the
// user is asked when a terminal is attached and several groups exist.
// Otherwise see [pickGroup].
func selectGroup(ctx context.Context, ra *RootArgs, p *rulesProvider, group string) (string, error) {
	groups, err := p.Groups(ctx)
	if err != nil {
		return "", err
	}

	if group == "" && len(groups) > 1 && interactive() {
		return promptGroup(ra.Logs, groups)
	}

	return pickGroup(p, groups, group)
}

// pickGroup matches an explicit group case-insensitively against groups.
// Otherwise a single group, or [configs.DefaultGroup] of the configuration,
// is chosen. [ErrGroupRequired] is returned when no choice can be made.
func pickGroup(p *rulesProvider, groups []string, group string) (string, error) {
	if group != "" {
		for _, g := range groups {
			if strings.EqualFold(g, group) {
				return g, nil
			}
		}

		if similar := suggestGroups(group, groups); len(similar) > 0 {
			return "", fmt.Errorf("%w: %q, did you mean %q?", rules.ErrUnknownGroup, group, similar)
		}

		return "", fmt.Errorf("%w: %q, available: %q", rules.ErrUnknownGroup, group, groups)
	}

	switch len(groups) {
	case 0:
		return "", fmt.Errorf("%w: %s defines no groups", ErrGroupRequired, p.Origin())
	case 1:
		return groups[0], nil
	}

	if p.sheet == nil && groups[0] == configs.DefaultGroup {
		return configs.DefaultGroup, nil
	}

	return "", fmt.Errorf("%w: set --group to one of %q", ErrGroupRequired, groups)
}

// maxSuggestions bounds the groups offered for a misspelled group.
const maxSuggestions = 3

// suggestGroups returns the groups that fuzzily match group, best first.
func suggestGroups(group string, groups []string) []string {
	matches := fuzzy.Find(group, groups)

	similar := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches[:min(len(matches), maxSuggestions)] {
		similar = append(similar, m.Str)
	}

	return similar
}

func interactive() bool {
	//nolint:gosec // G115: File descriptors fit in int.
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// promptGroup asks the user to pick one of groups. Log output is held until
// the prompt closes.
func promptGroup(logs *log.HoldWriter, groups []string) (string, error) {
	if logs != nil {
		logs.Hold()

		defer func() {
			dropped, err := logs.Release()
			if err != nil {
				panic(err)
			}
			if dropped > 0 {
				slog.Debug("dropped log entries during prompt", slog.Int("count", dropped))
			}
		}()
	}

	group := groups[0]

	err := huh.NewSelect[string]().
		Title("Destination group").
		Options(huh.NewOptions(groups...)...).
		Value(&group).
		Run()
	if err != nil {
		return "", fmt.Errorf("select group: %w", err)
	}

	return group, nil
}
