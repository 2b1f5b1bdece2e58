package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fyrsmithlabs/lswatch/pkg/listing"
)

var (
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	dirStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	presentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	absentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// changeEvent is one callback delivery as printed by watch.
type changeEvent struct {
	Time   time.Time     `json:"time"`
	Path   string        `json:"path"`
	Exists bool          `json:"exists"`
	Entry  listing.Entry `json:"entry"`
}

func newChangeEvent(path string, entry listing.Entry) changeEvent {
	return changeEvent{
		Time:   time.Now(),
		Path:   path,
		Exists: entry != nil,
		Entry:  entry,
	}
}

// behaviours lists the behaviour of each descriptor in entry.
func behaviours(entry listing.Entry) []string {
	out := make([]string, 0, len(entry))
	for _, d := range entry {
		b := d.Behaviour()
		if b == "" {
			b = "?"
		}
		out = append(out, b)
	}
	return out
}

func formatChange(ev changeEvent) string {
	var state string
	if ev.Exists {
		state = presentStyle.Render(strings.Join(behaviours(ev.Entry), ", "))
	} else {
		state = absentStyle.Render("(absent)")
	}
	return fmt.Sprintf("%s %s  %s",
		dimStyle.Render(ev.Time.Format("15:04:05")),
		pathStyle.Render(ev.Path),
		state)
}

func displayKey(key string) string {
	if key == "" {
		return "/"
	}
	return key
}

// formatListing renders dir one name per line, sorted, with subdirectories
// marked by a trailing separator.
func formatListing(key string, dir listing.Directory) string {
	names := make([]string, 0, len(dir))
	for name := range dir {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(pathStyle.Render(displayKey(key)))
	b.WriteByte('\n')
	for _, name := range names {
		entry := dir[name]
		label := valueStyle.Render(name)
		if listing.HasSubdirectory(entry) {
			label = dirStyle.Render(name + "/")
		}
		fmt.Fprintf(&b, "  %s  %s\n", label, dimStyle.Render(strings.Join(behaviours(entry), ", ")))
	}
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}
