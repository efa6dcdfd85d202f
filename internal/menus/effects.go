package menus

import (
	"context"
	"fmt"

	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/ui"
)

const effectSelectName = "effect"

// EffectsMenu is a single select over the effect presets. Picking one
// applies it to the guild's player and closes the menu.
type EffectsMenu struct {
	view    *ui.View
	client  Client
	guildID string
	choices *ui.Selection[string]
}

func NewEffectsMenu(m *ui.Manager, client Client, guildID string, opts Options) (*EffectsMenu, error) {
	menu := &EffectsMenu{
		view:    m.NewView(opts.view(false)),
		client:  client,
		guildID: guildID,
		choices: ui.NewSelection[string](),
	}
	current := ""
	if p, ok := client.Player(guildID); ok {
		current = p.Effect()
	}
	for _, label := range lavalink.Effects {
		opt := ui.Option{Label: label, Value: label, Default: label == current}
		if err := menu.choices.Add(opt, label); err != nil {
			return nil, err
		}
	}
	menu.view.Add(ui.NewSelect(effectSelectName, menu.choices, ui.SelectOptions{
		Placeholder: "Pick an effect to apply",
		Row:         0,
		NotFound:    "Effect not found.",
	}, menu.pick))
	return menu, nil
}

func (menu *EffectsMenu) View() *ui.View { return menu.view }

func (menu *EffectsMenu) Start(ctx context.Context, in *ui.Interaction) error {
	p, ok := menu.client.Player(menu.guildID)
	if !ok {
		return menu.view.Host().Reply(ctx, in, embed(menu.client, msgNoPlayer))
	}
	description := "No effect applied."
	if e := p.Effect(); e != "" {
		description = fmt.Sprintf("Current effect: **%s**", e)
	}
	return menu.view.Send(ctx, in, embed(menu.client, description))
}

func (menu *EffectsMenu) pick(ctx context.Context, v *ui.View, in *ui.Interaction, picked []string) error {
	defer v.Stop(ctx)
	if len(picked) == 0 {
		return v.Host().Defer(ctx, in)
	}
	p, ok := menu.client.Player(menu.guildID)
	if !ok {
		return v.Reply(ctx, in, embed(menu.client, msgDisconnected))
	}
	label := picked[0]
	if err := p.SetEffect(label); err != nil {
		return err
	}
	if label == lavalink.EffectReset {
		return v.Reply(ctx, in, embed(menu.client, "Effects have been reset."))
	}
	return v.Reply(ctx, in, embed(menu.client, fmt.Sprintf("%s %s: **%s**", lavalink.StatusEffect.StringEmoji(), lavalink.StatusEffect, label)))
}
