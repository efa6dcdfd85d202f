package menus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
)

type nodeField string

const (
	fieldName     nodeField = "name"
	fieldHost     nodeField = "host"
	fieldPort     nodeField = "port"
	fieldPassword nodeField = "password"
	fieldTimeout  nodeField = "timeout"
)

const (
	controlSSL        = "ssl"
	controlSearchOnly = "search_only"
	controlSources    = "sources"
	controlDone       = "done"

	msgIncomplete = "Please fill out all the fields before continuing"
)

var fieldLabels = map[nodeField]string{
	fieldName:     "🏷️ Name",
	fieldHost:     "🌐 Host",
	fieldPort:     "🔌 Port",
	fieldPassword: "🔑 Password",
	fieldTimeout:  "⏱️ Timeout",
}

var addNodePrompts = map[nodeField]ui.InputPrompt{
	fieldHost:     {Title: "Enter the domain or IP address of the host", Label: "Host", MinLength: 4, MaxLength: 200},
	fieldPort:     {Title: "Enter the host port to connect to", Label: "Port", MinLength: 2, MaxLength: 5},
	fieldPassword: {Title: "Enter the node's password", Label: "Password", MinLength: 1, MaxLength: 64},
	fieldName:     {Title: "Enter an easy to know name for the node", Label: "Name", MinLength: 8, MaxLength: 64},
	fieldTimeout:  {Title: "Enter a timeout in seconds", Label: "Timeout", MinLength: 2, MaxLength: 4},
}

var editNodePrompts = map[nodeField]ui.InputPrompt{
	fieldHost:     {Title: "Change the domain or IP address of the host", Label: "Host", MinLength: 4, MaxLength: 200},
	fieldPort:     {Title: "Change the host port to connect to", Label: "Port", MinLength: 2, MaxLength: 5},
	fieldPassword: {Title: "Change the node's password", Label: "Password", MinLength: 1, MaxLength: 64},
	fieldName:     {Title: "Change the name of this node", Label: "Name", MinLength: 8, MaxLength: 64},
	fieldTimeout:  {Title: "Enter the new timeout for this node", Label: "Timeout", MinLength: 2, MaxLength: 4},
}

// nodeForm collects edits on top of a base node. A nil field keeps the
// base value.
type nodeForm struct {
	mu         sync.Mutex
	base       lavalink.Node
	name       *string
	host       *string
	password   *string
	port       *int
	timeout    *int
	ssl        *bool
	searchOnly *bool
	disabled   []string
	sourcesSet bool
}

func newNodeForm(base lavalink.Node) *nodeForm {
	return &nodeForm{base: base}
}

func (f *nodeForm) reset(base lavalink.Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.base = base
	f.name, f.host, f.password = nil, nil, nil
	f.port, f.timeout = nil, nil
	f.ssl, f.searchOnly = nil, nil
	f.disabled, f.sourcesSet = nil, false
}

// Node is the base node with every pending edit applied.
func (f *nodeForm) Node() lavalink.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.base
	if f.name != nil {
		n.Name = *f.name
	}
	if f.host != nil {
		n.Host = *f.host
	}
	if f.password != nil {
		n.Password = *f.password
	}
	if f.port != nil {
		n.Port = *f.port
	}
	if f.timeout != nil {
		n.ResumeTimeout = *f.timeout
	}
	if f.ssl != nil {
		n.SSL = *f.ssl
	}
	if f.searchOnly != nil {
		n.SearchOnly = *f.searchOnly
	}
	if f.sourcesSet {
		n.DisabledSources = slices.Clone(f.disabled)
	}
	return n
}

func (f *nodeForm) changed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name != nil || f.host != nil || f.password != nil || f.port != nil ||
		f.timeout != nil || f.ssl != nil || f.searchOnly != nil || f.sourcesSet
}

// complete reports whether the node can be connected to.
func (f *nodeForm) complete() bool {
	n := f.Node()
	return n.Name != "" && n.Host != "" && n.Port != 0 && n.Password != ""
}

// apply validates raw for field and returns the notice to show. Invalid
// numbers leave the field unset.
func (f *nodeForm) apply(field nodeField, raw string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case fieldName:
		f.name = &raw
		return fmt.Sprintf("Name set to `%s`", raw)
	case fieldPassword:
		f.password = &raw
		return fmt.Sprintf("Password set to `%s`", raw)
	case fieldHost:
		host, ssl, hasScheme := ParseHost(raw)
		f.host = &host
		if hasScheme {
			f.ssl = &ssl
		}
		return fmt.Sprintf("Host set to `%s`", host)
	case fieldPort:
		port, err := ParsePort(raw)
		if err != nil {
			f.port = nil
			return msgInvalidPort
		}
		f.port = &port
		return fmt.Sprintf("Port set to `%d`", port)
	case fieldTimeout:
		seconds, err := ParseTimeout(raw)
		if err != nil {
			f.timeout = nil
			return msgInvalidTimeout
		}
		f.timeout = &seconds
		return fmt.Sprintf("Timeout set to `%d` seconds", seconds)
	}
	return ""
}

func (f *nodeForm) toggleSSL() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := !f.base.SSL
	if f.ssl != nil {
		v = !*f.ssl
	}
	f.ssl = &v
	return v
}

func (f *nodeForm) toggleSearchOnly() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := !f.base.SearchOnly
	if f.searchOnly != nil {
		v = !*f.searchOnly
	}
	f.searchOnly = &v
	return v
}

func (f *nodeForm) setDisabled(sources []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = slices.Clone(sources)
	f.sourcesSet = true
}

// promptButton opens the field's modal and stores the validated answer.
// The notice answers the modal submission; the parent view stays open
// whatever was entered.
func (f *nodeForm) promptButton(c Client, field nodeField, prompt ui.InputPrompt, row int) *ui.Button {
	return ui.NewButton(string(field), ui.KindGeneric, fieldLabels[field], discordgo.PrimaryButton, row,
		func(ctx context.Context, v *ui.View, in *ui.Interaction) error {
			raw, submit, err := prompt.Ask(ctx, v, in)
			if errors.Is(err, ui.ErrViewStopped) {
				return nil
			}
			if err != nil {
				return err
			}
			return v.Reply(ctx, submit, embed(c, f.apply(field, raw)))
		})
}

func (f *nodeForm) sslButton(c Client, row int) *ui.Button {
	return ui.NewButton(controlSSL, ui.KindGeneric, "🔒 SSL", discordgo.PrimaryButton, row,
		func(ctx context.Context, v *ui.View, in *ui.Interaction) error {
			if f.toggleSSL() {
				return v.Reply(ctx, in, embed(c, "Connecting to the node with SSL enabled"))
			}
			return v.Reply(ctx, in, embed(c, "Connecting to the node with SSL disabled"))
		})
}

func (f *nodeForm) searchOnlyButton(c Client, row int) *ui.Button {
	return ui.NewButton(controlSearchOnly, ui.KindGeneric, "🔍 Search only", discordgo.PrimaryButton, row,
		func(ctx context.Context, v *ui.View, in *ui.Interaction) error {
			if f.toggleSearchOnly() {
				return v.Reply(ctx, in, embed(c, "This node will only be used for searches"))
			}
			return v.Reply(ctx, in, embed(c, "This node will be used for search and playback"))
		})
}

// sourcesSelect lets the author pick the sources to disable. An empty pick
// enables every source.
func (f *nodeForm) sourcesSelect(row int) *ui.Select[string] {
	disabled := f.Node().DisabledSources
	sel := ui.NewSelection[string]()
	for _, s := range lavalink.Sources {
		_ = sel.Add(ui.Option{Label: titleCase(s), Value: s, Default: slices.Contains(disabled, s)}, s)
	}
	none := 0
	return ui.NewSelect(controlSources, sel, ui.SelectOptions{
		Placeholder: "Source to disable",
		Row:         row,
		MinValues:   &none,
		MaxValues:   len(lavalink.Sources),
	}, func(ctx context.Context, v *ui.View, in *ui.Interaction, picked []string) error {
		f.setDisabled(picked)
		return v.Host().Defer(ctx, in)
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
