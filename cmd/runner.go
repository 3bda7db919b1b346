package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/arx/internal/formatter"
	"github.com/desertthunder/arx/internal/server"
	"github.com/desertthunder/arx/internal/services"
	"github.com/desertthunder/arx/internal/shared"
	"github.com/desertthunder/arx/internal/tasks"
	"github.com/desertthunder/arx/internal/ui"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	arena  services.Service
	engine tasks.CompareEngine
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Arena  services.Service
	Engine tasks.CompareEngine
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Arena == nil {
		opts.Arena = services.NewArenaService(opts.Config.Arena)
	}
	if opts.Engine == nil {
		opts.Engine = tasks.NewBlockEngine(opts.Arena, nil, opts.Logger)
	}

	return &Runner{
		config: opts.Config,
		arena:  opts.Arena,
		engine: opts.Engine,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// Serve starts the HTTP comparison service.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(server.NewCompareHandler(r.engine, r.logger, r.config.Compare))
	router.Handler(server.NewChannelsHandler(r.arena, r.logger))
	router.Handler(&server.HealthHandler{})

	srv := server.NewServer(r.config.Server, router)
	r.logger.Info("serving", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Compare runs a comparison between two usernames and prints the result.
func (r *Runner) Compare(ctx context.Context, cmd *cli.Command) error {
	user1 := cmd.StringArg("user1")
	user2 := cmd.StringArg("user2")
	if user1 == "" || user2 == "" {
		return fmt.Errorf("%w: two usernames are required", shared.ErrMissingParameter)
	}

	opts := tasks.CompareOptions{
		User1:            user1,
		User2:            user2,
		ConcurrencyLimit: int(cmd.Int("concurrency")),
		MaxChannels:      int(cmd.Int("max-channels")),
	}
	if opts.ConcurrencyLimit <= 0 {
		opts.ConcurrencyLimit = r.config.Compare.ConcurrencyLimit
	}
	if opts.MaxChannels <= 0 {
		opts.MaxChannels = r.config.Compare.MaxChannels
	}

	var emitter tasks.Emitter
	if !cmd.Bool("quiet") {
		emitter = newStreamPrinter(r.output)
	}

	result, err := r.engine.Compare(ctx, emitter, opts)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tasks.FinalResult{
			CommonBlocks: result.CommonBlocks,
			User1Blocks:  result.User1Blocks,
			User2Blocks:  result.User2Blocks,
		}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Common blocks: %s × %s", user1, user2))
	r.writePlain("%s: %d unique blocks\n", user1, len(result.User1Blocks))
	r.writePlain("%s: %d unique blocks\n", user2, len(result.User2Blocks))
	r.writePlain("Common: %d blocks\n", len(result.CommonBlocks))
	for i, block := range result.CommonBlocks {
		r.writePlain("%d. https://www.are.na/block/%d [%s]\n", i+1, block.ID, strings.Join(block.Channels, ", "))
	}

	if output := cmd.String("output"); output != "" {
		return r.saveResult(output, cmd.String("format"), user1, user2, result)
	}
	return nil
}

// saveResult exports the comparison result to a file in the requested format.
func (r *Runner) saveResult(path, format, user1, user2 string, result *tasks.CompareResult) error {
	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = formatter.ExportToCSV(result.CommonBlocks)
	case "md", "markdown":
		data, err = formatter.ExportToMarkdown(user1, user2, result.CommonBlocks, result.User1Blocks, result.User2Blocks)
	case "", "text":
		data, err = formatter.ExportToText(user1, user2, result.CommonBlocks, result.User1Blocks, result.User2Blocks)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.logger.Info("saved result", "path", path, "format", format)
	return nil
}

// Channels lists a user's channels.
func (r *Runner) Channels(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username is required", shared.ErrMissingParameter)
	}

	user, err := r.arena.User(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to resolve user %s: %w", username, err)
	}

	channels, err := r.arena.UserChannels(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to list channels for %s: %w", username, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(channels, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d channels)", username, len(channels)))
	for _, ch := range channels {
		visibility := "private"
		if ch.Published {
			visibility = "published"
		}
		r.writePlain("%-40s %-10s %4d blocks  updated %s\n", ch.Slug, visibility, ch.Length, ch.UpdatedAt.Format("2006-01-02"))
	}
	return nil
}

// Setup writes a starter configuration file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.writePlain("Created %s, add your are.na API key to [arena].api_key\n", path)
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// streamPrinter renders progress events as styled terminal lines.
//
// Concurrent channel tasks emit into the same writer, so writes are
// serialized behind a mutex.
type streamPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	palette *ui.Palette
}

func newStreamPrinter(out io.Writer) *streamPrinter {
	return &streamPrinter{out: out, palette: ui.DefaultPalette}
}

// Emit implements [tasks.Emitter].
func (p *streamPrinter) Emit(event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var line string
	switch ev := event.(type) {
	case tasks.UserStart:
		line = p.palette.Title(fmt.Sprintf("%s: %d channels", ev.Username, ev.TotalChannels))
	case tasks.ChannelStart:
		line = fmt.Sprintf("[%d/%d] %s (%d pages)", ev.ChannelIndex, ev.TotalChannels, ev.ChannelName, ev.PagesInChannel)
	case tasks.ChannelProgress:
		line = p.palette.Help(fmt.Sprintf("[%d/%d] %s page %d/%d (%d blocks)", ev.ChannelIndex, ev.TotalChannels, ev.ChannelName, ev.Page, ev.PagesInChannel, ev.BlocksFetched))
	case tasks.ChannelComplete:
		line = p.palette.OK(fmt.Sprintf("[%d/%d] ✓ %s (%d pages, %d blocks)", ev.ChannelIndex, ev.TotalChannels, ev.ChannelName, ev.PagesFetched, ev.BlocksFetched))
	case tasks.StreamError:
		line = p.palette.Err("✗ " + ev.Error)
	case tasks.FinalResult:
		line = p.palette.Title(fmt.Sprintf("%d common blocks", len(ev.CommonBlocks)))
	default:
		return nil
	}

	_, err := fmt.Fprintln(p.out, line)
	return err
}
