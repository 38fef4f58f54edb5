package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/config"
	"github.com/theirongolddev/ptstrack/internal/daemon"
	"github.com/theirongolddev/ptstrack/internal/logger"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve tracker status over HTTP/SSE with Prometheus metrics",
	Long: `Serve tracker status over HTTP.

Endpoints: /healthz, /v1/status, /v1/events, /v1/stream (SSE) and /metrics.
The daemon polls the state database and publishes an event whenever the
stored revision moves.`,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	dataDir := config.DataDir()

	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(dataDir, "ptstrackd.pid"), "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(dataDir, "ptstrackd.log"), "Log file for detached mode")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run the daemon in the background")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonRuntime is written next to the pid file while the daemon runs.
type daemonRuntime struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

// daemonFiles is the pid file and its runtime sidecar.
type daemonFiles struct {
	pid     string
	runtime string
}

func currentDaemonFiles() daemonFiles {
	return daemonFiles{pid: flagDaemonPIDFile, runtime: flagDaemonPIDFile + ".json"}
}

// running reports the live daemon's pid. A pid file left by a dead
// process is removed.
func (f daemonFiles) running() (int, bool, error) {
	data, err := os.ReadFile(f.pid) //nolint:gosec // path comes from the local user
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false, fmt.Errorf("invalid pid in %s", f.pid)
	}
	if !processAlive(pid) {
		f.release()
		return pid, false, nil
	}
	return pid, true, nil
}

func (f daemonFiles) ensureFree() error {
	pid, alive, err := f.running()
	if err != nil {
		return err
	}
	if alive {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	return os.MkdirAll(filepath.Dir(f.pid), 0o750)
}

func (f daemonFiles) claim(rt daemonRuntime) error {
	if err := f.ensureFree(); err != nil {
		return err
	}
	if err := os.WriteFile(f.pid, []byte(strconv.Itoa(rt.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	data, err := json.MarshalIndent(rt, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.runtime, append(data, '\n'), 0o600)
}

func (f daemonFiles) release() {
	_ = os.Remove(f.pid)
	_ = os.Remove(f.runtime)
}

func (f daemonFiles) readRuntime() (daemonRuntime, error) {
	var rt daemonRuntime
	data, err := os.ReadFile(f.runtime) //nolint:gosec // path comes from the local user
	if err != nil {
		return rt, err
	}
	err = json.Unmarshal(data, &rt)
	return rt, err
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func daemonAddr() string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return appCfg.Daemon.Addr
}

func daemonConfig() daemon.Config {
	cfg := daemon.Config{
		DBPath:         dbPath(),
		Interval:       flagDaemonInterval,
		Addr:           daemonAddr(),
		EventsBuffer:   flagDaemonEventsBuffer,
		MinMatches:     appCfg.Forecast.MinMatches,
		AllowedOrigins: appCfg.Daemon.AllowedOrigins,
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Duration(appCfg.Daemon.IntervalSec) * time.Second
	}
	if cfg.EventsBuffer <= 0 {
		cfg.EventsBuffer = appCfg.Daemon.EventsBuffer
	}
	return cfg
}

func runDaemon(_ *cobra.Command, _ []string) error {
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("invalid daemon launch mode")
	case flagDaemonDetach:
		return startDaemonDetached()
	}
	return runDaemonForeground()
}

// startDaemonDetached re-executes the binary with --child and returns once
// the child has started.
func startDaemonDetached() error {
	files := currentDaemonFiles()
	if err := files.ensureFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	args := slices.DeleteFunc(slices.Clone(os.Args[1:]), func(a string) bool {
		return a == "--detach" || strings.HasPrefix(a, "--detach=")
	})
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // path comes from the local user
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // re-executes the current binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Println(cli.RenderKV("Started", fmt.Sprintf("pid %d", child.Process.Pid)))
	fmt.Println(cli.RenderKV("API", "http://"+daemonAddr()+"/v1/status"))
	fmt.Println(cli.RenderKV("PID file", files.pid))
	fmt.Println(cli.RenderKV("Log", flagDaemonLogFile))
	return nil
}

func runDaemonForeground() error {
	cfg := daemonConfig()
	files := currentDaemonFiles()
	if err := files.claim(daemonRuntime{
		PID:       os.Getpid(),
		Addr:      cfg.Addr,
		StartedAt: time.Now(),
		DBPath:    cfg.DBPath,
	}); err != nil {
		return err
	}
	defer files.release()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	level := config.LogLevel(appCfg)
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	svc := daemon.New(cfg, st, logger.NewJSON(os.Stdout, level))

	fmt.Fprintf(os.Stderr, "  ptstrack daemon on http://%s, polling %s every %s\n", cfg.Addr, cfg.DBPath, cfg.Interval)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	files := currentDaemonFiles()
	pid, alive, err := files.running()
	switch {
	case err != nil:
		return err
	case !alive && pid > 0:
		fmt.Println(cli.RenderKV("Daemon", fmt.Sprintf("stale pid file removed (pid %d)", pid)))
		return nil
	case !alive:
		fmt.Println(cli.RenderKV("Daemon", "not running"))
		return nil
	}

	addr := daemonAddr()
	if rt, err := files.readRuntime(); err == nil && rt.Addr != "" {
		addr = rt.Addr
	}
	fmt.Println(cli.RenderKV("Daemon", fmt.Sprintf("pid %d", pid)))
	fmt.Println(cli.RenderKV("Address", "http://"+addr))

	st, err := fetchDaemonStatus(cmd.Context(), addr)
	if err != nil {
		fmt.Println(cli.RenderKV("API", err.Error()))
		return nil
	}

	lastPoll := "pending"
	if !st.LastPollAt.IsZero() {
		lastPoll = st.LastPollAt.Local().Format(time.RFC3339)
	}
	fmt.Println(cli.RenderKV("Last poll", lastPoll))
	fmt.Println(cli.RenderKV("Polls", strconv.FormatInt(st.PollCount, 10)))
	fmt.Println(cli.RenderKV("Revision", strconv.FormatInt(st.Summary.Revision, 10)))
	fmt.Println(cli.RenderKV("PTS", fmt.Sprintf("%s / %s (%d%%)",
		cli.FormatPTS(st.Summary.CurrentPTS), cli.FormatPTS(st.Summary.TargetPTS), st.Summary.ProgressPercent)))
	fmt.Println(cli.RenderKV("Forecast", st.Summary.Forecast))
	fmt.Println(cli.RenderKV("Subscribers", strconv.Itoa(st.SubscriberCount)))
	if st.LastError != "" {
		fmt.Println(cli.RenderKV("Last error", st.LastError))
	}
	return nil
}

func fetchDaemonStatus(ctx context.Context, addr string) (daemon.Status, error) {
	var st daemon.Status
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response: %w", err)
	}
	return st, nil
}

func runDaemonStop(cmd *cobra.Command, _ []string) error {
	files := currentDaemonFiles()
	pid, alive, err := files.running()
	if err != nil {
		return err
	}
	if !alive {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 8*time.Second)
	defer cancel()
	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
		case <-tick.C:
			if !processAlive(pid) {
				files.release()
				fmt.Println(cli.RenderKV("Stopped", fmt.Sprintf("pid %d", pid)))
				return nil
			}
		}
	}
}
