package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2watch/internal/config"
	"github.com/alnah/go-md2watch/internal/engine"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"`
	Engine   engineInfo   `json:"engine"`
	Services servicesInfo `json:"services"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// engineInfo holds the configured engine and its executables.
type engineInfo struct {
	Name          string `json:"name"`
	Found         bool   `json:"found"`
	Path          string `json:"path,omitempty"`
	Version       string `json:"version,omitempty"`
	Sandbox       bool   `json:"sandbox"`
	WkhtmlToImage string `json:"wkhtmltoimage,omitempty"`
	WkhtmlToPDF   string `json:"wkhtmltopdf,omitempty"`
}

// servicesInfo reports what serve would start.
type servicesInfo struct {
	Bot        bool   `json:"bot"`
	HTTPAddr   string `json:"http_addr,omitempty"`
	PrefsStore string `json:"prefs_store"`
	Cache      bool   `json:"cache"`
	RedisAddr  string `json:"redis_addr,omitempty"`
	RedisOK    bool   `json:"redis_ok"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print JSON")
	configName := fs.StringP("config", "c", "", "config file name or path")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := &doctorResult{}
	cfg, err := env.LoadConfig(*configName)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		cfg = config.DefaultConfig()
	}
	runDoctor(ctx, cfg, result)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, result *doctorResult) {
	result.Env = envInfo{OS: runtime.GOOS, Arch: runtime.GOARCH}

	checkEngine(cfg, result)
	checkEnvironment(cfg, result)
	checkServices(ctx, cfg, result)
	checkSystem(result)

	switch {
	case len(result.Errors) > 0:
		result.Status = statusErrors
	case len(result.Warnings) > 0:
		result.Status = statusWarnings
	default:
		result.Status = statusReady
	}
}

// checkEngine locates the executables the configured engine needs.
func checkEngine(cfg *config.Config, result *doctorResult) {
	r := cfg.Render
	result.Engine.Name = r.Engine
	result.Engine.Sandbox = !r.NoSandbox

	if r.Engine == engine.NameWkhtml {
		toImage, errImage := lookWkhtml(r.WkhtmlToImg, "wkhtmltoimage")
		toPDF, errPDF := lookWkhtml(r.WkhtmlToPDF, "wkhtmltopdf")
		result.Engine.WkhtmlToImage = toImage
		result.Engine.WkhtmlToPDF = toPDF
		if errImage != nil {
			result.Errors = append(result.Errors, errImage.Error())
		}
		if errPDF != nil {
			result.Errors = append(result.Errors, errPDF.Error())
		}
		result.Engine.Found = errImage == nil && errPDF == nil
		if result.Engine.Found {
			result.Engine.Path = toImage
			result.Engine.Version = commandVersion(toImage, "--version", result)
		}
		return
	}

	chromePath := r.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Engine.Found = true
	result.Engine.Path = chromePath
	result.Engine.Version = commandVersion(chromePath, "--version", result)
}

// lookWkhtml resolves a wkhtml executable, configured or from PATH.
func lookWkhtml(configured, name string) (string, error) {
	bin := configured
	if bin == "" {
		bin = name
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%s not found. Install wkhtmltopdf or set render.%s", name, name)
	}
	return path, nil
}

func commandVersion(path, arg string, result *doctorResult) string {
	out, err := exec.Command(path, arg).Output() // #nosec G204 -- located executable
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get version of %s: %v", filepath.Base(path), err))
		return ""
	}
	return strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(cfg *config.Config, result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && cfg.Render.Engine != engine.NameWkhtml && !cfg.Render.NoSandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but the Chrome sandbox is enabled. Set render.noSandbox or pass --no-sandbox")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("MD2WATCH_CONTAINER") == "1" {
		return true, "MD2WATCH_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkServices reports what serve would start and pings Redis.
func checkServices(ctx context.Context, cfg *config.Config, result *doctorResult) {
	s := &result.Services
	s.Bot = cfg.Bot.Token != ""
	s.HTTPAddr = cfg.HTTP.Addr
	s.PrefsStore = cfg.Prefs.Store
	s.Cache = cfg.Cache.Enabled
	s.RedisAddr = cfg.Redis.Addr

	if !s.Bot && s.HTTPAddr == "" {
		result.Warnings = append(result.Warnings,
			"Neither BOT_TOKEN nor http.addr is set; 'md2watch serve' has nothing to run")
	}

	if cfg.Redis.Addr == "" {
		return
	}
	rdb, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	_ = rdb.Close()
	s.RedisOK = true
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	f, err := os.CreateTemp(tmpDir, "md2watch-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2watch doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Engine (%s)\n", r.Engine.Name)
	if r.Engine.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Engine.Path)
		if r.Engine.WkhtmlToPDF != "" {
			fmt.Fprintf(w, "  [OK] PDF tool at %s\n", r.Engine.WkhtmlToPDF)
		}
		if r.Engine.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Engine.Version)
		}
		if r.Engine.Name != engine.NameWkhtml {
			if r.Engine.Sandbox {
				fmt.Fprintln(w, "  [OK] Sandbox: enabled")
			} else {
				fmt.Fprintln(w, "  [OK] Sandbox: disabled")
			}
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Services")
	fmt.Fprintf(w, "  [OK] Telegram bot: %s\n", onOff(r.Services.Bot))
	if r.Services.HTTPAddr != "" {
		fmt.Fprintf(w, "  [OK] HTTP API: %s\n", r.Services.HTTPAddr)
	} else {
		fmt.Fprintln(w, "  [OK] HTTP API: off")
	}
	fmt.Fprintf(w, "  [OK] Preferences: %s\n", r.Services.PrefsStore)
	fmt.Fprintf(w, "  [OK] PDF cache: %s\n", onOff(r.Services.Cache))
	if r.Services.RedisAddr != "" {
		if r.Services.RedisOK {
			fmt.Fprintf(w, "  [OK] Redis: reachable at %s\n", r.Services.RedisAddr)
		} else {
			fmt.Fprintf(w, "  [ERROR] Redis: unreachable at %s\n", r.Services.RedisAddr)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
