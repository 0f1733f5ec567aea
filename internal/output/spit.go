// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/gitforge/internal/config"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "yaml", "toml", "raw"}

// Options controls how a dataset is shaped and rendered.
type Options struct {
	Format string
	Filter string
	Sort   string
	Titles bool
	Color  bool
}

// OptionsFrom reads the output related flags from cmd. Flags the command
// does not define are left at their zero value.
func OptionsFrom(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	}
}

// SliceDiceSpit filters, sorts and renders rows. columns names the row keys
// to emit, in order.
func SliceDiceSpit(w io.Writer, rows []map[string]interface{}, columns []string, opts Options) error {
	rows = FilterRows(rows, columns, opts.Filter)
	SortRows(rows, opts.Sort)

	// Only emit the requested columns so every format has the same shape.
	shaped := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		r := make(map[string]interface{}, len(columns))
		for _, c := range columns {
			r[c] = row[c]
		}
		shaped = append(shaped, r)
	}

	log.WithFields(log.Fields{"format": opts.Format, "rows": len(shaped)}).Debug("rendering")

	switch opts.Format {
	case "json":
		b, err := json.MarshalIndent(shaped, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(shaped)
		if err != nil {
			return fmt.Errorf("failed to render yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	case "toml":
		b, err := toml.Marshal(map[string]interface{}{"templates": shaped})
		if err != nil {
			return fmt.Errorf("failed to render toml: %w", err)
		}
		_, err = w.Write(b)
		return err
	case "raw":
		// First column only, one per line, for scripting.
		if len(columns) == 0 {
			return nil
		}
		for _, row := range shaped {
			if _, err := fmt.Fprintln(w, InterfaceToString(row[columns[0]])); err != nil {
				return err
			}
		}
		return nil
	default:
		return TableWriter(w, shaped, columns, opts)
	}
}

// TableWriter renders rows as a borderless table honoring color, titles and
// padding options.
func TableWriter(w io.Writer, rows []map[string]interface{}, columns []string, opts Options) error {
	if len(rows) == 0 {
		return nil
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 0)

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, 0, len(columns))
		for _, c := range columns {
			row = append(row, InterfaceToString(r[c], "-"))
		}
		data = append(data, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(data...)

	if opts.Titles {
		headers := make([]string, 0, len(columns))
		for _, c := range columns {
			headers = append(headers, strings.ToUpper(c))
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}

	_, err := fmt.Fprintln(w, t)
	return err
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
