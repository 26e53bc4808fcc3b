package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/mesh-intelligence/gridfields/internal/typeoption"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// optionColors maps the option palette to terminal colors.
var optionColors = map[types.SelectColor]color.Attribute{
	types.ColorPurple:    color.FgMagenta,
	types.ColorPink:      color.FgHiMagenta,
	types.ColorLightPink: color.FgHiRed,
	types.ColorOrange:    color.FgRed,
	types.ColorYellow:    color.FgYellow,
	types.ColorLime:      color.FgHiGreen,
	types.ColorGreen:     color.FgGreen,
	types.ColorAqua:      color.FgCyan,
	types.ColorBlue:      color.FgBlue,
}

var (
	typeColor   = color.New(color.FgCyan).SprintFunc()
	frozenColor = color.New(color.FgHiBlue, color.Bold).SprintFunc()
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printField prints one field with its current type configuration.
func printField(w io.Writer, f *types.Field, jsonMode bool) error {
	if jsonMode {
		return printJSON(w, f)
	}
	fmt.Fprintf(w, "ID:      %s\n", f.ID)
	fmt.Fprintf(w, "Name:    %s\n", f.Name)
	if f.Description != "" {
		fmt.Fprintf(w, "About:   %s\n", f.Description)
	}
	fmt.Fprintf(w, "Type:    %s\n", typeColor(f.Type))
	fmt.Fprintf(w, "Width:   %d\n", f.Width)
	fmt.Fprintf(w, "Flags:   %s\n", flagsOf(f))
	if opts := optionsOf(f); opts != "" {
		fmt.Fprintf(w, "Options: %s\n", opts)
	}
	fmt.Fprintf(w, "Config:  %s\n", f.TypeOption())
	return nil
}

// printFields prints fields as a table in display order.
func printFields(w io.Writer, fields []*types.Field, jsonMode bool) error {
	if jsonMode {
		if fields == nil {
			fields = []*types.Field{}
		}
		return printJSON(w, fields)
	}
	if len(fields) == 0 {
		fmt.Fprintln(w, "No fields found.")
		return nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tTYPE\tWIDTH\tFLAGS\tOPTIONS")
	for i, f := range fields {
		name := truncate(f.Name, 40)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			i, f.ID, name, typeColor(f.Type), f.Width, flagsOf(f), optionsOf(f))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(w, "Total: %d field(s)\n", len(fields))
	return nil
}

// printDone reports a command that has no field to show.
func printDone(w io.Writer, jsonMode bool, action, fieldID string) error {
	if jsonMode {
		return printJSON(w, map[string]string{"status": action, "field_id": fieldID})
	}
	fmt.Fprintf(w, "Field %s %s\n", fieldID, action)
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

func flagsOf(f *types.Field) string {
	var flags []string
	if f.Frozen {
		flags = append(flags, frozenColor("frozen"))
	}
	if !f.Visible {
		flags = append(flags, "hidden")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

// optionsOf renders the select options of f in their palette colors.
func optionsOf(f *types.Field) string {
	if !f.Type.IsChoice() {
		return ""
	}
	opt, err := typeoption.Decode(f.Type, f.TypeOption())
	if err != nil {
		return "?"
	}
	sel, _ := types.SelectOptions(opt)
	names := make([]string, len(sel.Options))
	for i, o := range sel.Options {
		attr, ok := optionColors[o.Color]
		if !ok || sel.DisableColor {
			names[i] = o.Name
			continue
		}
		names[i] = color.New(attr).Sprint(o.Name)
	}
	return strings.Join(names, ", ")
}
