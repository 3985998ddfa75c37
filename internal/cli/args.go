// Package cli provides command-line parsing and command handlers.
package cli

import (
	"fmt"
	"strings"
)

// =============================================================================
// COMMAND TYPE
// =============================================================================

// Command represents the CLI command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdVersion
	CmdImport
	CmdList
	CmdSearch
	CmdShow
	CmdExport
	CmdDelete
	CmdServe
)

// =============================================================================
// ARGS
// =============================================================================

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Conversation selection
	ID   string // --id
	Last bool   // --last (most recently updated conversation)

	// Export options
	Format string // --format
	Output string // --output (directory)
	Stdout bool   // --stdout (print instead of writing a file)

	// Positionals
	Query string // search query / import file / delete id

	// Config override
	ConfigPath string // --config
}

// ParseArgs parses raw command-line arguments (without the program name).
func ParseArgs(raw []string) (*Args, error) {
	args := &Args{Command: CmdHelp}

	if len(raw) == 0 {
		return args, nil
	}

	var positional []string
	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value := ""
		if eq := strings.Index(name, "="); eq >= 0 {
			value = name[eq+1:]
			name = name[:eq]
		}

		takesValue := func() (string, error) {
			if value != "" {
				return value, nil
			}
			if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
				i++
				return raw[i], nil
			}
			return "", fmt.Errorf("flag --%s requires a value", name)
		}

		switch name {
		case "id":
			v, err := takesValue()
			if err != nil {
				return nil, err
			}
			args.ID = v
		case "format", "f":
			v, err := takesValue()
			if err != nil {
				return nil, err
			}
			args.Format = v
		case "output", "o":
			v, err := takesValue()
			if err != nil {
				return nil, err
			}
			args.Output = v
		case "config":
			v, err := takesValue()
			if err != nil {
				return nil, err
			}
			args.ConfigPath = v
		case "last":
			args.Last = true
		case "stdout":
			args.Stdout = true
		case "help", "h":
			args.Command = CmdHelp
			return args, nil
		case "version", "v":
			args.Command = CmdVersion
			return args, nil
		default:
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
		i++
	}

	if len(positional) == 0 {
		return args, nil
	}

	switch positional[0] {
	case "help":
		args.Command = CmdHelp
	case "version":
		args.Command = CmdVersion
	case "import":
		args.Command = CmdImport
		if len(positional) > 1 {
			args.Query = positional[1]
		}
	case "list", "ls":
		args.Command = CmdList
	case "search":
		args.Command = CmdSearch
		if len(positional) > 1 {
			args.Query = strings.Join(positional[1:], " ")
		}
	case "show":
		args.Command = CmdShow
		if len(positional) > 1 {
			args.ID = positional[1]
		}
	case "export":
		args.Command = CmdExport
		if len(positional) > 1 {
			args.ID = positional[1]
		}
	case "delete", "rm":
		args.Command = CmdDelete
		if len(positional) > 1 {
			args.Query = positional[1]
		}
	case "serve":
		args.Command = CmdServe
	default:
		return nil, fmt.Errorf("unknown command: %s", positional[0])
	}

	return args, nil
}
