// Command build-readme regenerates README.md from README.md.tmpl with the
// current slash command reference.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/command/core"
	"github.com/keshon/lavadeck/internal/command/media"
	"github.com/keshon/lavadeck/internal/docs"
	"github.com/keshon/lavadeck/internal/logging"
	"github.com/keshon/lavadeck/pkg/cmd"
)

func main() {
	tmpl := flag.String("template", "README.md.tmpl", "README template")
	out := flag.String("out", "README.md", "output file")
	flag.Parse()
	logging.Setup(logging.Options{Level: "info"})

	reg := cmd.NewRegistry()
	for _, c := range (&media.Cog{}).Commands() {
		command.RegisterCommand(reg, c)
	}
	for _, c := range []command.DiscordCommand{
		&core.CreditsCommand{},
		&core.VersionCommand{},
		&core.SyncCommand{},
		&core.HelpCommand{Registry: reg},
	} {
		command.RegisterCommand(reg, c)
	}

	if err := docs.UpdateReadme(*tmpl, *out, docs.Sections(reg, core.CategoryWeight)); err != nil {
		log.Error().Err(err).Msg("failed to update readme")
		os.Exit(1)
	}
	log.Info().Str("file", *out).Msg("readme updated with current commands")
}
