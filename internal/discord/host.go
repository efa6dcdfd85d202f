package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavadeck/internal/ui"
)

var errSynthetic = errors.New("interaction has no gateway payload")

// Host implements ui.Host over a gateway session.
type Host struct {
	s *discordgo.Session
}

var _ ui.Host = (*Host)(nil)

func NewHost(s *discordgo.Session) *Host {
	return &Host{s: s}
}

// Send posts r as the initial response to in, or as a followup when in was
// already answered.
func (h *Host) Send(ctx context.Context, in *ui.Interaction, r ui.Response) (*ui.Message, error) {
	if in.Raw == nil {
		return nil, errSynthetic
	}
	opt := discordgo.WithContext(ctx)
	if in.Acknowledge() {
		err := h.s.InteractionRespond(in.Raw, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: responseData(r),
		}, opt)
		if err != nil {
			return nil, err
		}
		m, err := h.s.InteractionResponse(in.Raw, opt)
		if err != nil {
			return nil, err
		}
		return message(m, in, r.Ephemeral), nil
	}
	m, err := h.s.FollowupMessageCreate(in.Raw, true, webhookParams(r), opt)
	if err != nil {
		return nil, err
	}
	return message(m, in, r.Ephemeral), nil
}

func (h *Host) Update(ctx context.Context, in *ui.Interaction, r ui.Response) error {
	if in.Raw == nil {
		return errSynthetic
	}
	opt := discordgo.WithContext(ctx)
	if !in.Acknowledge() {
		_, err := h.s.InteractionResponseEdit(in.Raw, webhookEdit(r), opt)
		return err
	}
	return h.s.InteractionRespond(in.Raw, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: responseData(r),
	}, opt)
}

// Edit changes msg. Ephemeral messages go through the token of the
// interaction that created them.
func (h *Host) Edit(ctx context.Context, msg *ui.Message, r ui.Response) error {
	opt := discordgo.WithContext(ctx)
	if raw := rawOf(msg); raw != nil {
		_, err := h.s.FollowupMessageEdit(raw, msg.ID, webhookEdit(r), opt)
		return err
	}
	edit := discordgo.NewMessageEdit(msg.ChannelID, msg.ID)
	we := webhookEdit(r)
	edit.Content = we.Content
	edit.Embeds = we.Embeds
	edit.Components = we.Components
	_, err := h.s.ChannelMessageEditComplex(edit, opt)
	return err
}

func (h *Host) Delete(ctx context.Context, msg *ui.Message) error {
	opt := discordgo.WithContext(ctx)
	if raw := rawOf(msg); raw != nil {
		return h.s.FollowupMessageDelete(raw, msg.ID, opt)
	}
	return h.s.ChannelMessageDelete(msg.ChannelID, msg.ID, opt)
}

func (h *Host) Reply(ctx context.Context, in *ui.Interaction, c ui.Content) error {
	if in.Raw == nil {
		return errSynthetic
	}
	r := ui.Response{Content: c, Ephemeral: true}
	opt := discordgo.WithContext(ctx)
	if in.Acknowledge() {
		return h.s.InteractionRespond(in.Raw, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: responseData(r),
		}, opt)
	}
	_, err := h.s.FollowupMessageCreate(in.Raw, true, webhookParams(r), opt)
	return err
}

func (h *Host) Defer(ctx context.Context, in *ui.Interaction) error {
	if in.Raw == nil {
		return errSynthetic
	}
	if !in.Acknowledge() {
		return nil
	}
	return h.s.InteractionRespond(in.Raw, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, discordgo.WithContext(ctx))
}

// OpenModal must be the first response to in.
func (h *Host) OpenModal(ctx context.Context, in *ui.Interaction, m ui.Modal) error {
	if in.Raw == nil {
		return errSynthetic
	}
	if !in.Acknowledge() {
		return errors.New("modal must be the first response to an interaction")
	}
	return h.s.InteractionRespond(in.Raw, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: modalData(m),
	}, discordgo.WithContext(ctx))
}

func rawOf(msg *ui.Message) *discordgo.Interaction {
	if !msg.Ephemeral || msg.Interaction == nil {
		return nil
	}
	return msg.Interaction.Raw
}

func message(m *discordgo.Message, in *ui.Interaction, ephemeral bool) *ui.Message {
	return &ui.Message{ID: m.ID, ChannelID: m.ChannelID, Ephemeral: ephemeral, Interaction: in}
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func embeds(c ui.Content) []*discordgo.MessageEmbed {
	if e := c.Embed(); e != nil {
		return []*discordgo.MessageEmbed{e}
	}
	return nil
}

func responseData(r ui.Response) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    r.Content.Text(),
		Embeds:     embeds(r.Content),
		Components: r.Components,
		Flags:      flags(r.Ephemeral),
	}
}

func webhookParams(r ui.Response) *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content:    r.Content.Text(),
		Embeds:     embeds(r.Content),
		Components: r.Components,
		Flags:      flags(r.Ephemeral),
	}
}

// webhookEdit leaves the body untouched for a zero Content. Components are
// always replaced, so an empty slice strips them.
func webhookEdit(r ui.Response) *discordgo.WebhookEdit {
	components := r.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	edit := &discordgo.WebhookEdit{Components: &components}
	if r.Content.IsZero() {
		return edit
	}
	text := r.Content.Text()
	list := embeds(r.Content)
	if list == nil {
		list = []*discordgo.MessageEmbed{}
	}
	edit.Content = &text
	edit.Embeds = &list
	return edit
}

func modalData(m ui.Modal) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(m.Fields))
	for _, f := range m.Fields {
		style := f.Style
		if style == 0 {
			style = discordgo.TextInputShort
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    f.CustomID,
				Label:       f.Label,
				Style:       style,
				Placeholder: f.Placeholder,
				Value:       f.Value,
				MinLength:   f.MinLength,
				MaxLength:   f.MaxLength,
			},
		}})
	}
	return &discordgo.InteractionResponseData{
		CustomID:   m.CustomID,
		Title:      m.Title,
		Components: rows,
	}
}
