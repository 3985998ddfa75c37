package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"chatexport/internal/config"
	"chatexport/internal/export"
	"chatexport/internal/model"
	"chatexport/internal/server"
	"chatexport/internal/storage"
	"chatexport/internal/util"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes the parsed command and returns an exit code.
func Run(args *Args) int {
	switch args.Command {
	case CmdHelp:
		printHelp()
		return ExitOK
	case CmdVersion:
		fmt.Printf("chatexport %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return ExitOK
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	config.SetGlobal(cfg)

	store, err := storage.Open(cfg.StorePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer store.Close()

	switch args.Command {
	case CmdImport:
		return runImport(args, store)
	case CmdList:
		return runList(store, "", cfg.TimestampLocal)
	case CmdSearch:
		return runList(store, args.Query, cfg.TimestampLocal)
	case CmdShow:
		return runShow(args, cfg, store)
	case CmdExport:
		return runExport(args, cfg, store)
	case CmdDelete:
		return runDelete(args, store)
	case CmdServe:
		return runServe(cfg, store)
	default:
		printHelp()
		return ExitUsage
	}
}

// loadConfig loads configuration, honoring an explicit --config path.
func loadConfig(args *Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFromPath(args.ConfigPath)
	}
	return config.Load()
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// runImport reads a conversation from a JSON file (or stdin for "-") and
// saves it to the archive.
func runImport(args *Args, store *storage.Store) int {
	if args.Query == "" {
		fmt.Fprintln(os.Stderr, "Usage: chatexport import <file.json|->")
		return ExitUsage
	}

	in := os.Stdin
	if args.Query != "-" {
		f, err := os.Open(args.Query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		defer f.Close()
		in = f
	}

	conv, err := storage.ImportJSON(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	id, err := store.Save(conv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Printf("Imported %d messages as %s\n", conv.MessageCount(), id)
	return ExitOK
}

// runList prints the conversation table, optionally filtered by query.
func runList(store *storage.Store, query string, localTime bool) int {
	var (
		metas []model.ConversationMeta
		err   error
	)
	if query != "" {
		metas, err = store.Search(query)
	} else {
		metas, err = store.List()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Print(formatConversationTable(metas, localTime))
	return ExitOK
}

// runShow prints a TXT render of one conversation to stdout.
func runShow(args *Args, cfg *config.Config, store *storage.Store) int {
	conv, code := selectConversation(args, store)
	if conv == nil {
		return code
	}
	if cfg.TimestampLocal {
		conv = conv.Localized()
	}

	result, err := export.Export(conv, export.FormatTXT)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	os.Stdout.Write(result.Content)
	return ExitOK
}

// runExport renders a conversation and writes the blob to the output
// directory (or stdout).
func runExport(args *Args, cfg *config.Config, store *storage.Store) int {
	conv, code := selectConversation(args, store)
	if conv == nil {
		return code
	}

	formatName := args.Format
	if formatName == "" {
		formatName = cfg.DefaultFormat
	}

	format, err := export.ParseFormat(formatName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}
	if cfg.TimestampLocal && (format == export.FormatTXT || format == export.FormatMarkdown || format == export.FormatHTML) {
		conv = conv.Localized()
	}

	result, err := export.Export(conv, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var verr *export.ValidationError
		if errors.As(err, &verr) {
			return ExitUsage
		}
		return ExitError
	}

	if args.Stdout {
		os.Stdout.Write(result.Content)
		return ExitOK
	}

	outputDir := args.Output
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	path := filepath.Join(outputDir, result.Filename)
	if err := util.AtomicWriteFile(path, result.Content, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Printf("Exported to %s\n", path)
	return ExitOK
}

// runDelete removes a conversation by ID.
func runDelete(args *Args, store *storage.Store) int {
	id := args.Query
	if id == "" {
		id = args.ID
	}
	if id == "" {
		fmt.Fprintln(os.Stderr, "Usage: chatexport delete <id>")
		return ExitUsage
	}

	if err := store.Delete(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Printf("Deleted %s\n", id)
	return ExitOK
}

// runServe starts the HTTP API and blocks until interrupted.
func runServe(cfg *config.Config, store *storage.Store) int {
	logger := log.New(os.Stderr, "[chatexport] ", log.LstdFlags)
	srv := server.New(store, cfg.Server, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
			return ExitError
		}
		return ExitOK
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// selectConversation resolves --id / --last / positional id into a loaded
// conversation. Returns nil plus an exit code on failure.
func selectConversation(args *Args, store *storage.Store) (*model.Conversation, int) {
	var (
		conv *model.Conversation
		err  error
	)
	switch {
	case args.ID != "":
		conv, err = store.Load(args.ID)
	case args.Last:
		conv, err = store.LoadByIndex(0)
	default:
		fmt.Fprintln(os.Stderr, "Specify a conversation with --id <id> or --last")
		return nil, ExitUsage
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, storage.ErrConversationNotFound) {
			return nil, ExitUsage
		}
		return nil, ExitError
	}
	return conv, ExitOK
}

// formatConversationTable renders conversation metadata as a padded table.
func formatConversationTable(metas []model.ConversationMeta, localTime bool) string {
	if len(metas) == 0 {
		return "No conversations found.\n"
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("ID", 42) + " " +
		util.PadRight("Updated", 17) + " " +
		util.PadRight("Msgs", 5) + " Title\n")
	sb.WriteString(strings.Repeat("-", 90) + "\n")

	for _, m := range metas {
		updated := m.UpdatedAt
		if localTime {
			updated = updated.Local()
		}
		sb.WriteString(util.PadRight(m.ID, 42) + " " +
			util.PadRight(updated.Format("2006-01-02 15:04"), 17) + " " +
			util.PadRight(strconv.Itoa(m.MessageCount), 5) + " " +
			util.Truncate(m.Title, 40) + "\n")
	}
	return sb.String()
}

// printHelp prints usage information.
func printHelp() {
	fmt.Print(`chatexport - conversation archive and export tool

Usage:
  chatexport <command> [options]

Commands:
  import <file.json|->   Import a conversation from JSON
  list                   List archived conversations
  search <query>         Search titles and message content
  show --id <id>|--last  Print a conversation transcript
  export --id <id>|--last [--format txt|json|csv|md|html]
                         Export a conversation to a file
  delete <id>            Remove a conversation
  serve                  Start the HTTP API
  version                Print version information
  help                   Show this help

Options:
  --format, -f  Export format (default from config)
  --output, -o  Output directory (default from config)
  --stdout      Print the export instead of writing a file
  --config      Path to an alternate config.toml
`)
}
