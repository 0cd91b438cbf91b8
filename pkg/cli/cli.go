// Package cli implements the small flag/App surface shared by the gbfc
// binaries: long and short flags, grouped -W/-F toggles, and a help page
// wrapped to the terminal width.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

type Value interface {
	String() string
	Set(string) error
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	val, err := strconv.ParseBool(s)
	if err != nil && s != "" {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val || s == ""
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }

type intValue struct{ p *int }

func (v *intValue) Set(s string) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *intValue) String() string { return strconv.Itoa(*v.p) }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
}

// FlagGroupEntry describes one toggle inside a -W/-F style group. Enabled
// and Disabled are set by the matching "name" and "no-name" flags.
type FlagGroupEntry struct {
	Name     string
	Prefix   string
	Usage    string
	Enabled  *bool
	Disabled *bool
}

type FlagGroup struct {
	Name      string
	GroupType string
	Flags     []FlagGroupEntry
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	args       []string
	flagGroups []FlagGroup
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
	}
}

func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, expectedType string) {
	*p = value
	f.Var(&stringValue{p}, name, shorthand, usage, value, expectedType)
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.Var(&boolValue{p}, name, shorthand, usage, strconv.FormatBool(value), "")
}

func (f *FlagSet) Int(p *int, name, shorthand string, value int, usage, expectedType string) {
	*p = value
	f.Var(&intValue{p}, name, shorthand, usage, strconv.Itoa(value), expectedType)
}

func (f *FlagSet) Var(value Value, name, shorthand, usage, defValue, expectedType string) {
	if name == "" {
		panic("flag name cannot be empty")
	}
	flag := &Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: value, DefValue: defValue, ExpectedType: expectedType}
	if _, ok := f.flags[name]; ok {
		panic(fmt.Sprintf("flag redefined: %s", name))
	}
	f.flags[name] = flag
	if shorthand != "" {
		if _, ok := f.shorthands[shorthand]; ok {
			panic(fmt.Sprintf("shorthand flag redefined: %s", shorthand))
		}
		f.shorthands[shorthand] = flag
	}
}

// AddFlagGroup registers a named group of paired enable/disable toggles,
// e.g. -Woverflow / -Wno-overflow.
func (f *FlagSet) AddFlagGroup(name, groupType string, entries []FlagGroupEntry) {
	for i := range entries {
		if entries[i].Enabled != nil {
			f.Bool(entries[i].Enabled, entries[i].Prefix+entries[i].Name, "", false, entries[i].Usage)
		}
		if entries[i].Disabled != nil {
			f.Bool(entries[i].Disabled, entries[i].Prefix+"no-"+entries[i].Name, "", false, "Disable '"+entries[i].Name+"'")
		}
	}
	f.flagGroups = append(f.flagGroups, FlagGroup{Name: name, GroupType: groupType, Flags: entries})
}

func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		if len(arg) < 2 || arg[0] != '-' {
			f.args = append(f.args, arg)
			continue
		}
		if arg == "--" {
			f.args = append(f.args, arguments[i+1:]...)
			break
		}
		name := strings.TrimLeft(arg, "-")
		var inlineValue string
		hasInline := false
		if idx := strings.Index(name, "="); idx >= 0 {
			name, inlineValue = name[:idx], name[idx+1:]
			hasInline = true
		}

		flag, ok := f.flags[name]
		if !ok && !strings.HasPrefix(arg, "--") {
			flag, ok = f.shorthands[name]
		}
		if !ok {
			return fmt.Errorf("unknown flag: %s", arg)
		}

		if hasInline {
			if err := flag.Value.Set(inlineValue); err != nil {
				return err
			}
			continue
		}
		if _, isBool := flag.Value.(*boolValue); isBool {
			if err := flag.Value.Set(""); err != nil {
				return err
			}
			continue
		}
		if i+1 >= len(arguments) {
			return fmt.Errorf("flag needs an argument: %s", arg)
		}
		i++
		if err := flag.Value.Set(arguments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *FlagSet) Lookup(name string) *Flag { return f.flags[name] }

type App struct {
	Name        string
	Synopsis    string
	Description string
	FlagSet     *FlagSet
	Action      func(args []string) error
}

func NewApp(name string) *App {
	return &App{Name: name, FlagSet: NewFlagSet(name)}
}

func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintf(os.Stderr, "Usage: %s %s\nRun '%s --help' for available options.\n", a.Name, a.Synopsis, a.Name)
		return err
	}
	if help {
		a.printHelp(os.Stdout)
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

func (a *App) printHelp(w *os.File) {
	termWidth := getTerminalWidth()

	fmt.Fprintf(w, "Usage: %s %s\n", a.Name, a.Synopsis)
	if a.Description != "" {
		for _, line := range wrapText(a.Description, termWidth-4) {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}

	groupFlagNames := make(map[string]bool)
	for _, group := range a.FlagSet.flagGroups {
		for _, entry := range group.Flags {
			groupFlagNames[entry.Prefix+entry.Name] = true
			groupFlagNames[entry.Prefix+"no-"+entry.Name] = true
		}
	}

	var options []*Flag
	maxWidth := 0
	for _, flag := range a.FlagSet.flags {
		if groupFlagNames[flag.Name] {
			continue
		}
		options = append(options, flag)
		if l := len(formatFlagString(flag)); l > maxWidth {
			maxWidth = l
		}
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Name < options[j].Name })

	fmt.Fprintf(w, "\n    Options\n")
	for _, flag := range options {
		printEntry(w, formatFlagString(flag), flag.Usage, flag.DefValue, maxWidth, termWidth)
	}

	for _, group := range a.FlagSet.flagGroups {
		fmt.Fprintf(w, "\n    %s\n", group.Name)
		prefix := group.Flags[0].Prefix
		fmt.Fprintf(w, "        -%s<%s>, -%sno-<%s> to enable or disable:\n", prefix, group.GroupType, prefix, group.GroupType)
		entries := make([]FlagGroupEntry, len(group.Flags))
		copy(entries, group.Flags)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		for _, entry := range entries {
			printEntry(w, entry.Name, entry.Usage, "", maxWidth, termWidth)
		}
	}
}

func formatFlagString(flag *Flag) string {
	var sb strings.Builder
	_, isBool := flag.Value.(*boolValue)
	if flag.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s, ", flag.Shorthand)
	}
	fmt.Fprintf(&sb, "--%s", flag.Name)
	if !isBool && flag.ExpectedType != "" {
		fmt.Fprintf(&sb, " <%s>", flag.ExpectedType)
	}
	return sb.String()
}

func printEntry(w *os.File, left, usage, defValue string, maxWidth, termWidth int) {
	if defValue != "" && defValue != "false" {
		usage = fmt.Sprintf("%s |%s|", usage, defValue)
	}
	lines := wrapText(usage, termWidth-maxWidth-10)
	if len(lines) == 0 {
		lines = []string{""}
	}
	fmt.Fprintf(w, "        %-*s  %s\n", maxWidth, left, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(w, "        %-*s  %s\n", maxWidth, "", line)
	}
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	if width < 40 {
		return 40
	}
	return width
}

func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var current strings.Builder
	currentLen := 0
	for _, word := range words {
		if currentLen > 0 && currentLen+len(word)+1 > maxWidth {
			lines = append(lines, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(word)
		currentLen += len(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
