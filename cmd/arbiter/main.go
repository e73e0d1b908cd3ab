package main

import (
	"fmt"
	"os"
	"time"

	"github.com/arbiterfps/arbiter/pkg/config"
	"github.com/arbiterfps/arbiter/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool     `help:"Print version information and exit." short:"v"`
	Debug   bool     `help:"Whether to enable debug logging."`
	Env     []string `help:"Environment files to load before reading configuration." default:".env"`

	Serve struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files for the server." type:"file"`
	} `cmd:"" help:"Run a match authority."`

	Config struct {
	} `cmd:"" help:"Write arbiter's default configuration to standard output."`

	Watch struct {
		URL     string   `arg:"" name:"url" help:"Websocket address of the server, e.g. ws://localhost:29999/ws."`
		Redis   bool     `help:"Follow the configured Redis relay instead of the websocket."`
		Configs []string `name:"config" help:"Configuration files describing the match being watched." type:"file"`
	} `cmd:"" help:"Follow a running match as a replica and log its state."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) == 1 {
		err := serveCommand([]string{})
		if err != nil {
			writeError(err)
		}
		return
	}

	ctx := kong.Parse(&CLI,
		kong.Name("arbiter"),
		kong.Description("an authoritative match server for arena shooters"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Printf(
			"arbiter %s (commit %s)\n",
			version.Version,
			version.GitCommit,
		)
		fmt.Printf(
			"built %s\n",
			version.BuildTime,
		)
		os.Exit(0)
	}

	if err := config.LoadEnv(CLI.Env...); err != nil {
		writeError(err)
	}

	switch ctx.Command() {
	case "serve":
		fallthrough
	case "serve <configs>":
		err := serveCommand(CLI.Serve.Configs)
		if err != nil {
			writeError(err)
		}
	case "config":
		os.Stdout.Write(config.DEFAULT)
	case "watch <url>":
		err := watchCommand(CLI.Watch.URL, CLI.Watch.Redis, CLI.Watch.Configs)
		if err != nil {
			writeError(err)
		}
	}
}
