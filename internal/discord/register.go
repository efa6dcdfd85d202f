package discord

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/pkg/cmd"
)

// commandAPI is the part of the session used to manage guild commands.
type commandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, c *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// Registrar syncs slash command definitions with a guild. Definitions whose
// hash matches the cached one are not sent again.
type Registrar struct {
	api     commandAPI
	dir     string
	limiter *rate.Limiter
}

func NewRegistrar(api commandAPI, cacheDir string) *Registrar {
	return &Registrar{
		api:     api,
		dir:     cacheDir,
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 5),
	}
}

// Definitions returns the slash definitions of every registered command,
// sorted by name.
func Definitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.All() {
		sp, ok := cmd.Root(c).(command.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}
		if def.Type == 0 {
			def.Type = discordgo.ChatApplicationCommand
		}
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Sync deletes remote commands missing from defs and creates the ones whose
// definition changed since the last sync.
func (r *Registrar) Sync(ctx context.Context, appID, guildID string, defs []*discordgo.ApplicationCommand) error {
	opt := discordgo.WithContext(ctx)
	remote, err := r.api.ApplicationCommands(appID, guildID, opt)
	if err != nil {
		return fmt.Errorf("list commands of guild %s: %w", guildID, err)
	}

	hashes := r.load(guildID)
	wanted := make(map[string]string, len(defs))
	for _, d := range defs {
		wanted[d.Name] = hashCommand(d)
	}
	registered := make(map[string]bool, len(remote))
	for _, rc := range remote {
		if _, ok := wanted[rc.Name]; ok {
			registered[rc.Name] = true
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := r.api.ApplicationCommandDelete(appID, guildID, rc.ID, opt); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", rc.Name).Msg("failed to delete obsolete command")
			continue
		}
		delete(hashes, rc.Name)
		log.Info().Str("guild", guildID).Str("command", rc.Name).Msg("deleted obsolete command")
	}

	var failed int
	for _, d := range defs {
		if registered[d.Name] && hashes[d.Name] == wanted[d.Name] {
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		if _, err := r.api.ApplicationCommandCreate(appID, guildID, d, opt); err != nil {
			failed++
			log.Error().Err(err).Str("guild", guildID).Str("command", d.Name).Msg("failed to register command")
			continue
		}
		hashes[d.Name] = wanted[d.Name]
		log.Debug().Str("guild", guildID).Str("command", d.Name).Msg("registered command")
	}

	if err := r.save(guildID, hashes); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("failed to save command hashes")
	}
	if failed > 0 {
		return fmt.Errorf("register commands of guild %s: %d failed", guildID, failed)
	}
	return nil
}

// Clear removes every command of the guild, as done for blacklisted guilds.
func (r *Registrar) Clear(ctx context.Context, appID, guildID string) error {
	opt := discordgo.WithContext(ctx)
	remote, err := r.api.ApplicationCommands(appID, guildID, opt)
	if err != nil {
		return fmt.Errorf("list commands of guild %s: %w", guildID, err)
	}
	for _, rc := range remote {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := r.api.ApplicationCommandDelete(appID, guildID, rc.ID, opt); err != nil {
			return fmt.Errorf("delete %s: %w", rc.Name, err)
		}
	}
	return r.save(guildID, map[string]string{})
}

func (r *Registrar) path(guildID string) string {
	return filepath.Join(r.dir, guildID+".json")
}

func (r *Registrar) load(guildID string) map[string]string {
	out := make(map[string]string)
	if data, err := os.ReadFile(r.path(guildID)); err == nil {
		_ = json.Unmarshal(data, &out)
	}
	return out
}

func (r *Registrar) save(guildID string, hashes map[string]string) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path(guildID), data, 0o644)
}

// hashCommand is a SHA-1 of the fields Discord compares, with options sorted
// by name.
func hashCommand(c *discordgo.ApplicationCommand) string {
	stable := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if c.DefaultMemberPermissions != nil {
		stable["permissions"] = *c.DefaultMemberPermissions
	}
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]any{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
