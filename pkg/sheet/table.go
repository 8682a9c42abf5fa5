package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// DefaultNameColumn is the header of the column holding track names.
const DefaultNameColumn = "Track Name"

const (
	channelSuffix     = " channel"
	instructionSuffix = " instruction"
)

// Cell is the rule for one track in one destination group.
type Cell struct {
	// Channel is the output channel token, e.g. "1" or "5/6". Empty means the
	// track has no rule for the group.
	Channel string
	// Instruction is either the mute marker, a decibel offset, an alias, or empty.
	Instruction string
}

// Row holds the rules for one track name.
type Row struct {
	Cells map[string]Cell
	Name  string
}

// Cell returns the rule for group.
func (r Row) Cell(group string) (Cell, bool) {
	c, ok := r.Cells[group]

	return c, ok
}

// Table is a parsed rule table. It is not modified after parsing and may be
// shared between goroutines.
type Table struct {
	// Groups lists destination group names in column order.
	Groups []string
	Rows   []Row
}

// Find returns the first row whose name matches name case-insensitively.
func (t *Table) Find(name string) (Row, bool) {
	name = strings.TrimSpace(name)
	for _, r := range t.Rows {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}

	return Row{}, false
}

// HasGroup reports whether group is a column group of the table.
func (t *Table) HasGroup(group string) bool {
	return slices.Contains(t.Groups, group)
}

// Tokens returns every non-empty channel token in the table, across all
// groups, in row order. Tokens may repeat.
func (t *Table) Tokens() []string {
	var tokens []string
	for _, r := range t.Rows {
		for _, g := range t.Groups {
			if c, ok := r.Cells[g]; ok && c.Channel != "" {
				tokens = append(tokens, c.Channel)
			}
		}
	}

	return tokens
}

// ParseOpt configures [Parse].
type ParseOpt func(*parseOptions)

type parseOptions struct {
	nameColumn string
}

// WithNameColumn sets the header of the track name column.
func WithNameColumn(name string) ParseOpt {
	return func(o *parseOptions) {
		if name != "" {
			o.nameColumn = name
		}
	}
}

type column struct {
	group string
	kind  columnKind
	index int
}

type columnKind int

const (
	columnCombined columnKind = iota
	columnChannel
	columnInstruction
)

// Parse reads a CSV rule table. The header row names the track name column
// (see [WithNameColumn]; the first column is used when none matches) and the
// group columns.
func Parse(r io.Reader, opts ...ParseOpt) (*Table, error) {
	o := &parseOptions{nameColumn: DefaultNameColumn}
	for _, opt := range opts {
		opt(o)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	nameIdx := 0
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), o.nameColumn) {
			nameIdx = i
			break
		}
	}

	t := &Table{}
	columns := make([]column, 0, len(header))

	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == nameIdx || h == "" {
			continue
		}

		col := column{index: i, group: h, kind: columnCombined}

		lower := strings.ToLower(h)
		switch {
		case strings.HasSuffix(lower, channelSuffix):
			col.kind = columnChannel
			col.group = strings.TrimSpace(h[:len(h)-len(channelSuffix)])
		case strings.HasSuffix(lower, instructionSuffix):
			col.kind = columnInstruction
			col.group = strings.TrimSpace(h[:len(h)-len(instructionSuffix)])
		}

		if !slices.Contains(t.Groups, col.group) {
			t.Groups = append(t.Groups, col.group)
		}

		columns = append(columns, col)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		name := strings.TrimSpace(field(record, nameIdx))
		if name == "" {
			continue
		}

		row := Row{Name: name, Cells: make(map[string]Cell, len(t.Groups))}
		for _, col := range columns {
			value := strings.TrimSpace(field(record, col.index))
			cell := row.Cells[col.group]

			switch col.kind {
			case columnCombined:
				cell = splitCombined(value)
			case columnChannel:
				cell.Channel = value
			case columnInstruction:
				cell.Instruction = value
			}

			row.Cells[col.group] = cell
		}

		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// splitCombined splits "5/6 Turn down" into channel "5/6" and instruction
// "Turn down".
func splitCombined(value string) Cell {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return Cell{}
	}

	return Cell{
		Channel:     fields[0],
		Instruction: strings.Join(fields[1:], " "),
	}
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}

	return ""
}
