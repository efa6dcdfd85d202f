// Command cli inspects the datastore offline: `cli nodes` lists playback
// nodes and `cli presets` lists equalizer presets.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/keshon/lavadeck/internal/config"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: cli nodes|presets")
		os.Exit(2)
	}
	if err := run(os.Stdout, os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, what string) error {
	cfg, err := config.LoadStorage()
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch what {
	case "nodes":
		nodes := lavalink.NewNodeRegistry(store)
		if err := nodes.Load(); err != nil {
			return err
		}
		return printNodes(w, nodes.All())
	case "presets":
		presets, err := store.Presets()
		if err != nil {
			return err
		}
		return printPresets(w, presets)
	default:
		return fmt.Errorf("unknown subcommand %q", what)
	}
}

func printNodes(w io.Writer, nodes []lavalink.Node) error {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		kind := "playback"
		if n.SearchOnly {
			kind = "search"
		}
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			n.Name,
			n.URI(),
			kind,
			strconv.FormatBool(n.Managed),
			strconv.Itoa(len(n.EnabledSources())),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "URI", "Kind", "Bundled", "Sources").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func printPresets(w io.Writer, presets []storage.NamedPreset) error {
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		author := p.Author
		if author == "" {
			author = "Built-in"
		}
		rows = append(rows, []string{p.Name, author, strconv.Itoa(len(p.Bands))})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Preset", "Author", "Bands").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}
