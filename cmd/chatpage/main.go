package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/chatpage/internal/config"
	"github.com/mtlprog/chatpage/internal/handler"
	"github.com/mtlprog/chatpage/internal/logger"
	"github.com/mtlprog/chatpage/internal/page"
	"github.com/mtlprog/chatpage/internal/server"
	"github.com/mtlprog/chatpage/internal/static"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "chatpage",
		Usage:     "Serve a landing page with an embedded Dialogflow Messenger chat widget",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   config.DefaultLogLevel,
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   config.DefaultLogFormat,
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "template",
				Usage:   "Path to a page template overriding the built-in one",
				EnvVars: []string{"TEMPLATE_PATH"},
			},
			&cli.StringFlag{
				Name:    "agent-id",
				Usage:   "Dialogflow agent ID",
				EnvVars: []string{"DF_AGENT_ID"},
			},
			&cli.StringFlag{
				Name:    "chat-title",
				Value:   config.DefaultChatTitle,
				Usage:   "Title shown in the chat window and page header",
				EnvVars: []string{"DF_CHAT_TITLE"},
			},
			&cli.StringFlag{
				Name:    "language-code",
				Value:   config.DefaultLanguageCode,
				Usage:   "Agent language code",
				EnvVars: []string{"DF_LANGUAGE_CODE"},
			},
			&cli.StringFlag{
				Name:    "intent",
				Value:   config.DefaultIntent,
				Usage:   "Event sent to the agent when the widget loads (empty to disable)",
				EnvVars: []string{"DF_INTENT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")), c.String("log-format"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web server",
				Action: runServe,
			},
			{
				Name:   "render",
				Usage:  "Render the page to stdout and exit",
				Action: runRender,
			},
		},
		Action: runServe,
	}
}

// loadConfig builds and validates the configuration from flags and environment.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Config{
		Port:         c.Int("port"),
		LogLevel:     c.String("log-level"),
		LogFormat:    c.String("log-format"),
		TemplatePath: c.String("template"),
		Widget: config.Widget{
			AgentID:      c.String("agent-id"),
			ChatTitle:    c.String("chat-title"),
			LanguageCode: c.String("language-code"),
			Intent:       c.String("intent"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadPage(cfg config.Config) (*page.Page, error) {
	p, err := page.Load(cfg.TemplatePath, static.FS, static.IndexTemplate, cfg.Widget)
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	return p, nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	p, err := loadPage(cfg)
	if err != nil {
		return err
	}
	slog.Debug("page rendered", "bytes", len(p.Bytes()), "etag", p.ETag())

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := handler.New(p, slog.Default())
	srv := server.New(cfg.Addr(), h.Routes(), slog.Default())

	return srv.Run(ctx)
}

func runRender(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	p, err := loadPage(cfg)
	if err != nil {
		return err
	}

	if _, err := c.App.Writer.Write(p.Bytes()); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
