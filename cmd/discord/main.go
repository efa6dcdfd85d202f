package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/keshon/lavadeck/internal/cog"
	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/command/core"
	"github.com/keshon/lavadeck/internal/command/media"
	"github.com/keshon/lavadeck/internal/config"
	"github.com/keshon/lavadeck/internal/discord"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/logging"
	"github.com/keshon/lavadeck/internal/middleware"
	"github.com/keshon/lavadeck/internal/status"
	"github.com/keshon/lavadeck/internal/storage"
	"github.com/keshon/lavadeck/internal/ui"
	v "github.com/keshon/lavadeck/internal/version"
	"github.com/keshon/lavadeck/pkg/cmd"
	"github.com/keshon/lavadeck/pkg/jobmgr"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("bot exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closer := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closer.Close()
	log.Info().Str("version", v.AppVersion).Msgf("starting %s bot", v.AppName)

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer store.Close()

	client := lavalink.NewClient(store, int(cfg.EmbedColor))

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	host := discord.NewHost(session)
	manager := ui.NewManager(host, ui.ManagerOptions{
		Timeout: cfg.MenuTimeout,
		Notice: func(text string) ui.Content {
			return ui.EmbedContent(client.ConstructEmbed(lavalink.EmbedOptions{Description: text}))
		},
	})

	registry := cmd.NewRegistry()
	bot := discord.New(session, host, discord.Options{
		Registry:          registry,
		UI:                manager,
		Storage:           store,
		Embeds:            client,
		Blacklist:         cfg.GuildBlacklist,
		InitSlashCommands: cfg.InitSlashCommands,
		CommandCacheDir:   cfg.CommandCacheDir,
	})

	jobs := jobmgr.NewManager(func(e jobmgr.Event) {
		log.Debug().Str("job", e.Name).Str("state", string(e.State)).AnErr("err", e.Err).Msg("job event")
	})
	setup := cog.NewSetupContext(cog.Options{
		Client:   client,
		Registry: registry,
		Jobs:     jobs,
		Shared: []command.DiscordCommand{
			&core.CreditsCommand{Client: client},
			&core.VersionCommand{Client: client},
			&core.SyncCommand{Client: client, Sync: bot.SyncCommands},
			&core.HelpCommand{Client: client, Registry: registry},
		},
		Persistent: []string{"plsyncslash", "help"},
		// The first middleware is the innermost.
		Middlewares: []cmd.Middleware{
			middleware.WithUserPermissionCheck(cfg.DeveloperID),
			middleware.WithGuildOnly(),
			middleware.WithCommandLogger(),
		},
		DeveloperID:  cfg.DeveloperID,
		ReadyTimeout: cfg.ReadyTimeout,
	})
	err = setup.Setup(&media.Cog{
		Client:      client,
		UI:          manager,
		Storage:     store,
		DeveloperID: cfg.DeveloperID,
		MenuTimeout: cfg.MenuTimeout,
		FlowTimeout: cfg.FlowTimeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	if cfg.StatusAddr != "" {
		srv := status.NewServer(cfg.StatusAddr, client)
		g.Go(func() error { return srv.Run(gctx) })
	}
	err = g.Wait()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	manager.StopAll(shutdown)
	if cerr := setup.Close(shutdown); cerr != nil {
		log.Warn().Err(cerr).Msg("failed to unload cogs")
	}
	jobs.StopAll()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("bot exited cleanly")
	return nil
}
