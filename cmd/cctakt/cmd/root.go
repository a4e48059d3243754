package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/cctakt/cctakt/internal/adapters/github"
	"github.com/cctakt/cctakt/internal/agent"
	"github.com/cctakt/cctakt/internal/config"
	"github.com/cctakt/cctakt/internal/lock"
	"github.com/cctakt/cctakt/internal/logging"
	"github.com/cctakt/cctakt/internal/plan"
	"github.com/cctakt/cctakt/internal/supervisor"
	"github.com/cctakt/cctakt/internal/tui"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	noColor   bool
	quiet     bool

	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "cctakt",
	Short: "Terminal orchestrator for concurrent AI coding agents",
	Long: `cctakt supervises one interactive conductor and any number of worker
agents, each a CLI coding assistant running in its own git worktree. Work
flows in through an on-disk plan file; merges and build checks are
serialized through dedicated worker agents and gated by human review in
the terminal UI.

Running 'cctakt' with no subcommand launches the terminal UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return bindFlags()
	},
	RunE: runTUI,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion injects build-time version info, called from main before Execute.
func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application's version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .cctakt/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-essential output")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func bindFlags() error {
	if noColor {
		_ = os.Setenv("NO_COLOR", "1")
	}
	return nil
}

// loadConfig is the one place every subcommand goes through to get a
// validated Config plus the directory it's rooted at.
func loadConfig() (*config.Config, *config.Loader, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runTUI is the default command: load config, build the agent/plan/merge
// stack, spawn the interactive conductor, and hand the terminal to
// bubbletea.
func runTUI(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, loader, err := loadConfig()
	if err != nil {
		return err
	}
	projectRoot := loader.ProjectDir()

	agentCfg := cfg.Agents.GetAgentConfig(cfg.Agents.Default)
	if agentCfg == nil || !agentCfg.Enabled {
		return fmt.Errorf("default agent %q is not configured or not enabled", cfg.Agents.Default)
	}

	lockFile, err := lock.Acquire(projectRoot)
	if err != nil {
		return err
	}
	defer lockFile.Release()

	output := tui.NewTUIOutput()
	logHandler := tui.NewTUILogHandler(output, parseLogLevel(cfg.Log.Level))
	logger := logging.NewWithHandler(logHandler)
	conductorLog := logger.WithAgent(cfg.Agents.Default)

	registry := agent.NewRegistry()
	store := plan.New(projectRoot)

	sup, err := supervisor.New(supervisor.Config{
		RepoPath:    projectRoot,
		WorktreeDir: cfg.Git.WorktreeDir,
		WorkerBin:   agentCfg.Path,
	}, registry, output, store)
	if err != nil {
		return fmt.Errorf("starting supervisor: %w", err)
	}

	if ghClient, ghErr := github.NewFromRemote(projectRoot, cfg.GitHub.Remote, cfg.GitHub.Token); ghErr != nil {
		logger.Warn("GitHub collaborator unavailable, create_pr tasks will fail", "error", ghErr)
	} else {
		sup.SetGitHub(ghClient)
	}

	conductorLog.Info("starting conductor", "workdir", projectRoot)
	conductor, err := spawnConductor(ctx, cfg.Agents.Default, agentCfg.Path, projectRoot)
	if err != nil {
		conductorLog.Error("failed to start conductor", "error", err)
		return fmt.Errorf("starting %s: %w", cfg.Agents.Default, err)
	}
	registry.AddBacked(&conductor.Agent, conductor)

	model := tui.NewModel(projectRoot, registry, output)
	model.Supervisor = sup

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

// spawnConductor starts the interactive agent binary attached to a PTY
// sized to the controlling terminal (falling back to 24x80 when stdout
// isn't one, e.g. under a test harness).
func spawnConductor(ctx context.Context, name, path, workdir string) (*agent.Interactive, error) {
	rows, cols := 24, 80
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cols, rows = w, h
	}

	args := strings.Fields(path)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty agent path")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	return agent.NewInteractive(0, name, workdir, cmd, uint16(rows), uint16(cols))
}
