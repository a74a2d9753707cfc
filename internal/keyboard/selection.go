// Package keyboard builds and decodes multi-select inline keyboards.
//
// A selected option carries ChosenMarker in front of its label. The callback
// payload of a button never changes, so toggling is idempotent and decoding
// only looks at labels.
package keyboard

import (
	"strconv"
	"strings"
)

const (
	// Columns is the number of option buttons per row
	Columns = 2
	// ChosenMarker prefixes the label of a selected option
	ChosenMarker = "✅ "
)

// Button is one inline keyboard button
type Button struct {
	Text string
	Data string
	URL  string
}

// Grid is a 2-D inline keyboard
type Grid [][]Button

// Payload builds the callback payload of the option with the given index
func Payload(action string, index int) string {
	return action + " " + strconv.Itoa(index)
}

// ParsePayload extracts the option index from a payload built by Payload
func ParsePayload(action, data string) (int, bool) {
	rest, ok := strings.CutPrefix(data, action+" ")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// Create lays options into rows of Columns buttons, marks preselected ones and
// appends finish as its own row. It reports whether any option started selected.
func Create(options []string, action string, finish Button, preselected []string) (Grid, bool) {
	chosen := make(map[string]struct{}, len(preselected))
	for _, p := range preselected {
		chosen[p] = struct{}{}
	}

	anySelected := false
	buttons := make([]Button, 0, len(options))
	for i, option := range options {
		label := option
		if _, ok := chosen[option]; ok {
			label = ChosenMarker + option
			anySelected = true
		}
		buttons = append(buttons, Button{Text: label, Data: Payload(action, i)})
	}

	grid := chunk(buttons, Columns)
	grid = append(grid, []Button{finish})
	return grid, anySelected
}

// Process flips the marker on the button whose payload equals toggled and
// returns the new grid with the selection in grid order. Unknown payloads and
// the finish button leave the grid unchanged.
func Process(grid Grid, toggled string, options []string, finish Button) (Grid, []string) {
	known := make(map[string]struct{}, len(options))
	for _, o := range options {
		known[o] = struct{}{}
	}

	next := clone(grid)
	if toggled != finish.Data {
		for _, row := range next {
			for j := range row {
				if row[j].Data != toggled {
					continue
				}
				if _, ok := known[Label(row[j].Text)]; !ok {
					continue
				}
				row[j].Text = flip(row[j].Text)
			}
		}
	}
	return next, GetSelected(next)
}

// GetSelected returns the labels of every chosen option in grid order
func GetSelected(grid Grid) []string {
	selected := []string{}
	for _, row := range grid {
		for _, btn := range row {
			if IsChosen(btn.Text) {
				selected = append(selected, Label(btn.Text))
			}
		}
	}
	return selected
}

// IsChosen reports whether a button label carries the marker
func IsChosen(text string) bool {
	return strings.HasPrefix(text, ChosenMarker)
}

// Label strips the marker from a button label
func Label(text string) string {
	return strings.TrimPrefix(text, ChosenMarker)
}

func flip(text string) string {
	if IsChosen(text) {
		return Label(text)
	}
	return ChosenMarker + text
}

func chunk(buttons []Button, n int) Grid {
	var rows Grid
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		row := make([]Button, end-i)
		copy(row, buttons[i:end])
		rows = append(rows, row)
	}
	return rows
}

func clone(grid Grid) Grid {
	out := make(Grid, len(grid))
	for i, row := range grid {
		out[i] = make([]Button, len(row))
		copy(out[i], row)
	}
	return out
}
