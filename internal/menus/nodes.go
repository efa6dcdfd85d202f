package menus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
)

const (
	controlShowSources = "show_sources"
	controlDelete      = "delete"

	msgNoNodes = "There are no nodes configured."
)

func nodeOption(n lavalink.Node, _ int) ui.Option {
	return ui.Option{
		Label:       truncateLabel(n.Name),
		Value:       strconv.FormatInt(n.ID, 10),
		Description: truncateLabel(fmt.Sprintf("%s:%d", n.Host, n.Port)),
	}
}

// NodePickerSource lists the registered nodes, re-read on every page.
type NodePickerSource struct {
	client    Client
	message   string
	perPage   int
	selection *ui.Selection[lavalink.Node]
}

func NewNodePickerSource(client Client, message string) *NodePickerSource {
	return &NodePickerSource{
		client:    client,
		message:   message,
		perPage:   pickerPerPage,
		selection: ui.NewSelection[lavalink.Node](),
	}
}

func (s *NodePickerSource) Selection() *ui.Selection[lavalink.Node] { return s.selection }
func (s *NodePickerSource) MaxPages() int                           { return ui.MaxPages(len(s.client.Nodes().All()), s.perPage) }

func (s *NodePickerSource) GetPage(_ context.Context, page int) ([]lavalink.Node, error) {
	s.selection.Reset()
	nodes := s.client.Nodes().All()
	start, end := ui.PageBounds(page, s.perPage, len(nodes))
	for i, n := range nodes[start:end] {
		if err := s.selection.Add(nodeOption(n, start+i), n); err != nil {
			return nil, err
		}
	}
	return nodes[start:end], nil
}

func (s *NodePickerSource) FormatPage(_ context.Context, page int, nodes []lavalink.Node) (ui.Content, error) {
	if len(nodes) == 0 {
		return embed(s.client, msgNoNodes), nil
	}
	var b strings.Builder
	b.WriteString(s.message)
	b.WriteString("\n\n")
	start := page * s.perPage
	for i, n := range nodes {
		fmt.Fprintf(&b, "`%d.` **%s** `%s`\n", start+i+1, n.Name, n.URI())
	}
	return ui.EmbedContent(s.client.ConstructEmbed(lavalink.EmbedOptions{
		Description: strings.TrimSpace(b.String()),
		Footer:      fmt.Sprintf("Page %s/%s", humanize.Comma(int64(page+1)), humanize.Comma(int64(s.MaxPages()))),
	})), nil
}

// NodePickerMenu resolves a single node.
type NodePickerMenu = EntryPickerMenu[lavalink.Node]

func NewNodePickerMenu(m *ui.Manager, client Client, message string, opts Options) *NodePickerMenu {
	return NewEntryPickerMenu[lavalink.Node](m, NewNodePickerSource(client, message), "Pick a node", opts)
}

// NodeManageSource shows one node per page. The node of the last rendered
// page is the target of the edit controls.
type NodeManageSource struct {
	client Client

	mu     sync.Mutex
	target *lavalink.Node
}

func NewNodeManageSource(client Client) *NodeManageSource {
	return &NodeManageSource{client: client}
}

func (s *NodeManageSource) MaxPages() int { return ui.MaxPages(len(s.client.Nodes().All()), 1) }

func (s *NodeManageSource) GetPage(_ context.Context, page int) ([]lavalink.Node, error) {
	nodes := s.client.Nodes().All()
	start, end := ui.PageBounds(page, 1, len(nodes))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = nil
	if end > start {
		n := nodes[start]
		s.target = &n
	}
	return nodes[start:end], nil
}

// Target is the node of the last rendered page.
func (s *NodeManageSource) Target() (lavalink.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return lavalink.Node{}, false
	}
	return *s.target, true
}

func (s *NodeManageSource) FormatPage(_ context.Context, page int, nodes []lavalink.Node) (ui.Content, error) {
	if len(nodes) == 0 {
		return embed(s.client, msgNoNodes), nil
	}
	n := nodes[0]
	status := "Unavailable"
	for _, up := range s.client.Nodes().Available() {
		if up.ID == n.ID {
			status = "Available"
			break
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Host**: `%s`\n", n.Host)
	fmt.Fprintf(&b, "**Port**: `%d`\n", n.Port)
	fmt.Fprintf(&b, "**SSL**: %s\n", yesNo(n.SSL))
	fmt.Fprintf(&b, "**Search only**: %s\n", yesNo(n.SearchOnly))
	fmt.Fprintf(&b, "**Resume timeout**: `%d` seconds\n", n.ResumeTimeout)
	fmt.Fprintf(&b, "**Enabled sources**: %s\n", humanize.Comma(int64(len(n.EnabledSources()))))
	fmt.Fprintf(&b, "**Status**: %s", status)
	if n.Managed {
		b.WriteString("\n\nThis node is bundled and cannot be changed.")
	}
	return ui.EmbedContent(s.client.ConstructEmbed(lavalink.EmbedOptions{
		Title:       n.Name,
		Description: b.String(),
		Footer: fmt.Sprintf("Page %s/%s | ID %d",
			humanize.Comma(int64(page+1)), humanize.Comma(int64(s.MaxPages())), n.ID),
	})), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// NodeManagerMenu pages through the nodes and edits or deletes the one on
// screen. Pending edits are dropped when the page moves to another node;
// done persists them.
type NodeManagerMenu struct {
	*ui.Paginator[lavalink.Node]
	manager *ui.Manager
	client  Client
	source  *NodeManageSource
	form    *nodeForm
	timeout time.Duration

	mu       sync.Mutex
	formFor  int64
	deleting bool

	showSources *ui.Button
	edit        []ui.Control
}

func NewNodeManagerMenu(m *ui.Manager, client Client, opts Options) *NodeManagerMenu {
	source := NewNodeManageSource(client)
	menu := &NodeManagerMenu{
		Paginator: ui.NewPaginator[lavalink.Node](m, source, ui.PaginatorOptions{View: opts.view(true)}),
		manager:   m,
		client:    client,
		source:    source,
		form:      newNodeForm(lavalink.Node{}),
		timeout:   opts.Timeout,
	}
	menu.showSources = ui.NewButton(controlShowSources, ui.KindGeneric, "☁️ Sources", discordgo.PrimaryButton, 1, menu.listSources)
	menu.edit = []ui.Control{
		ui.NewButton(controlDone, ui.KindDone, "✔️ Done", discordgo.SuccessButton, 1, menu.done),
		menu.form.searchOnlyButton(client, 1),
		menu.form.sslButton(client, 1),
		menu.form.promptButton(client, fieldName, editNodePrompts[fieldName], 1),
		menu.form.promptButton(client, fieldHost, editNodePrompts[fieldHost], 2),
		menu.form.promptButton(client, fieldPort, editNodePrompts[fieldPort], 2),
		menu.form.promptButton(client, fieldPassword, editNodePrompts[fieldPassword], 2),
		menu.form.promptButton(client, fieldTimeout, editNodePrompts[fieldTimeout], 2),
		ui.NewButton(controlDelete, ui.KindGeneric, "🗑️ Delete", discordgo.DangerButton, 2, menu.toggleDelete),
	}
	menu.OnPrepare(menu.prepare)
	return menu
}

func (menu *NodeManagerMenu) prepare(int) {
	target, ok := menu.source.Target()
	if !ok {
		return
	}
	menu.mu.Lock()
	if menu.formFor != target.ID {
		menu.formFor = target.ID
		menu.deleting = false
		menu.form.reset(target)
	}
	menu.mu.Unlock()

	v := menu.View()
	v.Add(menu.showSources)
	if target.Managed || lavalink.IsBundled(target.ID) {
		return
	}
	v.Add(menu.edit...)
	v.Add(menu.form.sourcesSelect(3))
}

// Pending is the target node with the unsaved edits applied.
func (menu *NodeManagerMenu) Pending() lavalink.Node { return menu.form.Node() }

func (menu *NodeManagerMenu) Deleting() bool {
	menu.mu.Lock()
	defer menu.mu.Unlock()
	return menu.deleting
}

func (menu *NodeManagerMenu) listSources(ctx context.Context, v *ui.View, in *ui.Interaction) error {
	target, ok := menu.source.Target()
	if !ok {
		return v.Reply(ctx, in, embed(menu.client, msgNoNodes))
	}
	names := make([]string, 0, len(lavalink.Sources))
	for _, s := range target.EnabledSources() {
		names = append(names, titleCase(s))
	}
	return v.Reply(ctx, in, embed(menu.client, "__Enabled sources__:\n"+strings.Join(names, "\n")))
}

func (menu *NodeManagerMenu) toggleDelete(ctx context.Context, v *ui.View, in *ui.Interaction) error {
	menu.mu.Lock()
	menu.deleting = !menu.deleting
	deleting := menu.deleting
	menu.mu.Unlock()
	if deleting {
		return v.Reply(ctx, in, embed(menu.client, "When you press done this node will be permanently deleted"))
	}
	return v.Reply(ctx, in, embed(menu.client, "This node will no longer be deleted once you press done"))
}

func (menu *NodeManagerMenu) done(ctx context.Context, v *ui.View, in *ui.Interaction) error {
	target, ok := menu.source.Target()
	if !ok {
		defer v.Stop(ctx)
		return v.Host().Defer(ctx, in)
	}
	if menu.Deleting() {
		return menu.confirmDelete(ctx, v, in, target)
	}

	defer v.Stop(ctx)
	if !menu.form.changed() {
		return v.Reply(ctx, in, embed(menu.client, "No changes were made."))
	}
	n := menu.form.Node()
	if err := menu.client.Nodes().Update(n); err != nil {
		return menu.nodeError(ctx, v, in, err)
	}
	log.Info().Int64("node", n.ID).Str("name", n.Name).Msg("node updated")
	return v.Reply(ctx, in, embed(menu.client, fmt.Sprintf("Node `%s` has been updated.", n.Name)))
}

// confirmDelete asks before deleting target. Declining, or letting the
// question time out, leaves the menu open with the delete toggle cleared.
func (menu *NodeManagerMenu) confirmDelete(ctx context.Context, v *ui.View, in *ui.Interaction, target lavalink.Node) error {
	question := ui.EmbedContent(menu.client.ConstructEmbed(lavalink.EmbedOptions{
		Title:       "Delete node",
		Description: fmt.Sprintf("Are you sure you want to permanently delete node `%s`?", target.Name),
	}))
	confirm := ui.NewYesNo(menu.manager, in.UserID, question, menu.timeout)
	if err := confirm.Start(ctx, in); err != nil {
		return err
	}
	if !confirm.Wait(ctx, 0) {
		menu.mu.Lock()
		menu.deleting = false
		menu.mu.Unlock()
		return v.Reply(ctx, in, embed(menu.client, fmt.Sprintf("Node `%s` was not deleted.", target.Name)))
	}

	defer v.Stop(ctx)
	if err := menu.client.Nodes().Delete(target.ID); err != nil {
		return menu.nodeError(ctx, v, in, err)
	}
	log.Info().Int64("node", target.ID).Str("name", target.Name).Msg("node deleted")
	return v.Reply(ctx, in, embed(menu.client, fmt.Sprintf("Node `%s` has been deleted.", target.Name)))
}

func (menu *NodeManagerMenu) nodeError(ctx context.Context, v *ui.View, in *ui.Interaction, err error) error {
	switch {
	case errors.Is(err, lavalink.ErrBundledNode):
		return v.Reply(ctx, in, embed(menu.client, "Bundled nodes cannot be changed."))
	case errors.Is(err, lavalink.ErrNodeNotFound):
		return v.Reply(ctx, in, embed(menu.client, "This node no longer exists."))
	}
	return err
}

// AddNodeFlow collects the settings of a new node. Nothing is persisted;
// the caller adds the node returned by Wait.
type AddNodeFlow struct {
	view   *ui.View
	client Client
	form   *nodeForm

	finished *ui.Signal
	mu       sync.Mutex
	last     *ui.Interaction
}

// Defaults of a node added through the flow.
const (
	defaultResumeTimeout     = 600
	defaultReconnectAttempts = -1
)

func NewAddNodeFlow(m *ui.Manager, client Client, opts Options) *AddNodeFlow {
	f := &AddNodeFlow{
		view:   m.NewView(opts.view(true)),
		client: client,
		form: newNodeForm(lavalink.Node{
			ResumeTimeout:     defaultResumeTimeout,
			ReconnectAttempts: defaultReconnectAttempts,
		}),
		finished: ui.NewSignal(),
	}
	f.view.Add(
		ui.NewButton(controlDone, ui.KindDone, "✔️ Done", discordgo.SuccessButton, 0, f.done),
		ui.NewButton(ui.ButtonClose, ui.KindClose, "✖", discordgo.DangerButton, 0, func(ctx context.Context, v *ui.View, in *ui.Interaction) error {
			err := v.Host().Defer(ctx, in)
			v.Stop(ctx)
			return err
		}),
		f.form.searchOnlyButton(client, 0),
		f.form.sslButton(client, 0),
		f.form.promptButton(client, fieldName, addNodePrompts[fieldName], 1),
		f.form.promptButton(client, fieldHost, addNodePrompts[fieldHost], 1),
		f.form.promptButton(client, fieldPort, addNodePrompts[fieldPort], 1),
		f.form.promptButton(client, fieldPassword, addNodePrompts[fieldPassword], 1),
		f.form.promptButton(client, fieldTimeout, addNodePrompts[fieldTimeout], 1),
		f.form.sourcesSelect(2),
	)
	return f
}

func (f *AddNodeFlow) View() *ui.View { return f.view }

// Pending is the node as entered so far.
func (f *AddNodeFlow) Pending() lavalink.Node { return f.form.Node() }

func (f *AddNodeFlow) Start(ctx context.Context, in *ui.Interaction, title, description string) error {
	return f.view.Send(ctx, in, ui.EmbedContent(f.client.ConstructEmbed(lavalink.EmbedOptions{
		Title:       title,
		Description: description,
	})))
}

func (f *AddNodeFlow) done(ctx context.Context, v *ui.View, in *ui.Interaction) error {
	if !f.form.complete() {
		return v.Reply(ctx, in, embed(f.client, msgIncomplete))
	}
	f.mu.Lock()
	f.last = in
	f.mu.Unlock()
	f.finished.Fire()

	err := v.Host().Defer(ctx, in)
	v.Stop(ctx)
	return err
}

// Wait blocks until done is pressed with every required field filled in.
// ok is false when the flow was closed, timed out or ctx ended. The
// returned interaction is the done press, already acknowledged.
func (f *AddNodeFlow) Wait(ctx context.Context) (node lavalink.Node, last *ui.Interaction, ok bool) {
	select {
	case <-f.finished.Done():
	case <-f.view.Done():
	case <-ctx.Done():
	}
	if !f.finished.Fired() {
		return lavalink.Node{}, nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form.Node(), f.last, true
}
