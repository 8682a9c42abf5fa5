package rules

import (
	"errors"
	"fmt"

	"github.com/macropower/alsroute/pkg/channel"
	"github.com/macropower/alsroute/pkg/sheet"
)

var (
	// ErrUnknownGroup indicates a destination group that the rule table does
	// not define.
	ErrUnknownGroup = errors.New("unknown destination group")
	// ErrGroupRequired indicates that a destination group must be named
	// because none could be chosen automatically.
	ErrGroupRequired = errors.New("a destination group is required")
)

// TableSource is a [Source] that reads one destination group of a
// [sheet.Table]. Its channel map is derived from the tokens of every group.
type TableSource struct {
	table    *sheet.Table
	channels *channel.Map
	aliases  Aliases
	group    string
}

// NewTableSource creates a new [TableSource] for group. Malformed channel
// tokens are dropped from the channel map and returned as warnings.
func NewTableSource(table *sheet.Table, group string, aliases Aliases) (*TableSource, []error, error) {
	if !table.HasGroup(group) {
		return nil, nil, fmt.Errorf("%w: %q (have %q)", ErrUnknownGroup, group, table.Groups)
	}

	channels, warnings := channel.Derive(table.Tokens())

	return &TableSource{
		table:    table,
		channels: channels,
		aliases:  aliases,
		group:    group,
	}, warnings, nil
}

// Group returns the destination group.
func (s *TableSource) Group() string {
	return s.group
}

// Channels implements [Source].
func (s *TableSource) Channels() *channel.Map {
	return s.channels
}

// Resolve implements [Source]. A row without a channel for the group yields
// no directive.
func (s *TableSource) Resolve(name, _ string) (Directive, bool, error) {
	row, ok := s.table.Find(name)
	if !ok {
		return Directive{}, false, nil
	}

	cell, ok := row.Cell(s.group)
	if !ok || cell.Channel == "" {
		return Directive{}, false, nil
	}

	d := Directive{Channel: cell.Channel, Rule: "table: " + s.group}

	mute, adjust, err := ParseInstruction(cell.Instruction, s.aliases)
	if err != nil {
		return d, true, fmt.Errorf("track %q: %w", name, err)
	}

	d.Mute = mute
	d.Adjust = adjust

	return d, true, nil
}
