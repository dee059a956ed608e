package main

import (
	"fmt"
	"io"
	"strings"

	md2watch "github.com/alnah/go-md2watch"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2watch <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render      Render Markdown into watch pages, PDF, or HTML")
	fmt.Fprintln(w, "  serve       Run the Telegram bot and the HTTP API")
	fmt.Fprintln(w, "  devices     List supported watch models")
	fmt.Fprintln(w, "  doctor      Check the rendering environment")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2watch help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2watch render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render Markdown files into smartwatch-sized PNG pages, a PDF, or HTML.")
	fmt.Fprintln(w, "PNG pages are named <name>_<n>.png.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (.md, .markdown, .txt)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to the input)")
	fmt.Fprintln(w, "  -f, --format <fmt>        png, pdf, or html (default: png)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watch:")
	fmt.Fprintf(w, "  -d, --device <key>        %s\n", strings.Join(md2watch.DeviceKeys(), ", "))
	fmt.Fprintln(w, "      --theme <name>        dark or light (default: dark)")
	fmt.Fprintln(w, "      --layout <name>       continuous or multipage (default: continuous)")
	fmt.Fprintln(w, "      --template <name>     minimalistic, modern, or classic")
	fmt.Fprintln(w, "      --font-scale <f>      0.8 small, 1.0 medium, 1.2 large")
	fmt.Fprintln(w, "      --padding <px>        Padding on every side (default: 20)")
	fmt.Fprintln(w, "      --font-body <family>  Body font family")
	fmt.Fprintln(w, "      --font-header <fam>   Header font family")
	fmt.Fprintln(w, "      --font-code <family>  Code font family")
	fmt.Fprintln(w)
	printEngineFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  md2watch render notes.md -d ultra_2 --layout multipage")
	fmt.Fprintln(w, "  md2watch render docs/ -o out/ -f pdf")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2watch serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the Telegram bot (when BOT_TOKEN is set) and the HTTP API (when an")
	fmt.Fprintln(w, "address is configured) until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Services:")
	fmt.Fprintln(w, "      --http <addr>         HTTP API address (e.g., :8080)")
	fmt.Fprintln(w, "      --no-bot              Do not start the Telegram bot")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printEngineFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logging:")
	fmt.Fprintln(w, "      --log-console         Human-readable log output")
	fmt.Fprintln(w, "  -q, --quiet               Only log errors")
	fmt.Fprintln(w, "  -v, --verbose             Log debug messages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  BOT_TOKEN, MD2WATCH_HTTP_ADDR, MD2WATCH_REDIS_ADDR, MD2WATCH_ENGINE,")
	fmt.Fprintln(w, "  MD2WATCH_WORKERS, MD2WATCH_LOG_LEVEL, ROD_BROWSER_BIN, CHROME_BIN")
}

func printEngineFlags(w io.Writer) {
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintf(w, "  -e, --engine <name>       %s (default: rod)\n", strings.Join(md2watch.EngineNames(), ", "))
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel converters (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --overlap <px>        Rows shared by consecutive pages (default: 10)")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox (Docker/CI)")
	fmt.Fprintln(w, "      --no-mathjax          Do not load MathJax")
}

func printDevicesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2watch devices [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List supported watch models and their screen sizes.")
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2watch doctor [--json] [--config <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the rendering engine, Redis, and the environment.")
	fmt.Fprintln(w, "Exits 1 when a check fails.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "devices":
		printDevicesUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2watch version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2watch help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
