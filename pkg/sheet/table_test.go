package sheet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/pkg/sheet"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input      string
		opts       []sheet.ParseOpt
		wantGroups []string
		lookup     string
		group      string
		want       sheet.Cell
		wantFound  bool
	}{
		"paired columns": {
			input: "Track Name,North Channel,North Instruction\n" +
				"BASS,2,mute\n" +
				"CHOIR,5/6,-10\n",
			wantGroups: []string{"North"},
			lookup:     "choir",
			group:      "North",
			want:       sheet.Cell{Channel: "5/6", Instruction: "-10"},
			wantFound:  true,
		},
		"combined cells": {
			input: "Track Name,East Campus,West\n" +
				"BGV,5/6 Turn down,3/4\n",
			wantGroups: []string{"East Campus", "West"},
			lookup:     "BGV",
			group:      "East Campus",
			want:       sheet.Cell{Channel: "5/6", Instruction: "Turn down"},
			wantFound:  true,
		},
		"empty cell": {
			input: "Track Name,North Channel,North Instruction\n" +
				"KEYS,,\n",
			wantGroups: []string{"North"},
			lookup:     "KEYS",
			group:      "North",
			want:       sheet.Cell{},
			wantFound:  true,
		},
		"byte order mark and custom name column": {
			input:      "\ufeffTrack,Main\nClick,1\n",
			opts:       []sheet.ParseOpt{sheet.WithNameColumn("Track")},
			wantGroups: []string{"Main"},
			lookup:     "CLICK",
			group:      "Main",
			want:       sheet.Cell{Channel: "1"},
			wantFound:  true,
		},
		"name column falls back to first": {
			input:      "Name,Main\nGuide,2\n",
			wantGroups: []string{"Main"},
			lookup:     "Guide",
			group:      "Main",
			want:       sheet.Cell{Channel: "2"},
			wantFound:  true,
		},
		"missing row": {
			input:      "Track Name,Main\nGuide,2\n",
			wantGroups: []string{"Main"},
			lookup:     "Pad",
			group:      "Main",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			table, err := sheet.Parse(strings.NewReader(tc.input), tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.wantGroups, table.Groups)

			row, found := table.Find(tc.lookup)
			require.Equal(t, tc.wantFound, found)

			if !found {
				return
			}

			cell, ok := row.Cell(tc.group)
			require.True(t, ok)
			assert.Equal(t, tc.want, cell)
		})
	}
}

func TestParseFirstMatchWins(t *testing.T) {
	t.Parallel()

	table, err := sheet.Parse(strings.NewReader("Track Name,Main\nBass,1\nBASS,2\n"))
	require.NoError(t, err)

	row, ok := table.Find("bass")
	require.True(t, ok)
	assert.Equal(t, "1", row.Cells["Main"].Channel)
}

func TestParseSkipsBlankNames(t *testing.T) {
	t.Parallel()

	table, err := sheet.Parse(strings.NewReader("Track Name,Main\n,1\n  ,2\nPad,3\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Pad", table.Rows[0].Name)
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	_, err := sheet.Parse(strings.NewReader(""))
	require.Error(t, err)
}

func TestTableTokens(t *testing.T) {
	t.Parallel()

	table, err := sheet.Parse(strings.NewReader(
		"Track Name,A Channel,A Instruction,B Channel,B Instruction\n" +
			"Bass,2,,1,mute\n" +
			"Choir,5/6,-10,,\n",
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "1", "5/6"}, table.Tokens())
	assert.True(t, table.HasGroup("B"))
	assert.False(t, table.HasGroup("C"))
}
