package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/hochfrequenz/build-annotator/internal/approval"
	"github.com/hochfrequenz/build-annotator/internal/buildhost"
	"github.com/hochfrequenz/build-annotator/internal/buildrecord"
	"github.com/hochfrequenz/build-annotator/internal/config"
	"github.com/hochfrequenz/build-annotator/internal/domain"
	"github.com/hochfrequenz/build-annotator/internal/notify"
	"github.com/hochfrequenz/build-annotator/internal/recorder"
	"github.com/hochfrequenz/build-annotator/internal/render"
	"github.com/hochfrequenz/build-annotator/internal/scriptrt"
	"github.com/hochfrequenz/build-annotator/web/api"
	"github.com/spf13/cobra"
)

var (
	runJob    string
	runNumber int
	runResult string
	runEnv    []string
	runLog    string
	runAxis   string
	runNoSave bool
	servePort int
)

func init() {
	// run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the post-build script against a finished build",
		RunE:  runRun,
	}
	runCmd.Flags().StringVar(&runJob, "job", "", "job name")
	runCmd.Flags().IntVar(&runNumber, "number", 1, "build number")
	runCmd.Flags().StringVar(&runResult, "result", "SUCCESS", "result of the build's main phase")
	runCmd.Flags().StringArrayVar(&runEnv, "env", nil, "build environment variable NAME=VALUE (repeatable)")
	runCmd.Flags().StringVar(&runLog, "log", "", "console log file of the build, - for stdin")
	runCmd.Flags().StringVar(&runAxis, "axis", "", "run as aggregate build with children NAME=V1,V2,...")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "do not write build records")
	runCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(runCmd)

	// show command
	showCmd := &cobra.Command{
		Use:   "show JOB [NUMBER]",
		Short: "Show a build record",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runShow,
	}
	rootCmd.AddCommand(showCmd)

	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the approval admin API",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithLocalFallback(configPath)
}

func openApprovals(cfg *config.Config) (*approval.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.General.DatabasePath), 0755); err != nil {
		return nil, err
	}
	return approval.NewStore(cfg.General.DatabasePath)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rc, err := cfg.RecorderConfig()
	if err != nil {
		return err
	}
	timeout, err := cfg.PostBuild.TimeoutDuration()
	if err != nil {
		return err
	}
	result, err := domain.ParseResult(runResult)
	if err != nil {
		return err
	}
	env, err := parseEnv(runEnv)
	if err != nil {
		return err
	}

	approvals, err := openApprovals(cfg)
	if err != nil {
		return err
	}
	defer approvals.Close()

	records, err := buildrecord.NewStore(cfg.General.RecordsDir)
	if err != nil {
		return err
	}

	build, err := newBuild(result, env, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	children := build.Children()
	all := append([]*buildhost.Build{build}, children...)

	// A build that already has a record keeps its annotations and result.
	// A record that cannot be read stops the run instead of being overwritten.
	for _, b := range all {
		rec, err := records.Load(b.Job(), b.Number())
		if errors.Is(err, buildrecord.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading existing record: %w", err)
		}
		rec.Apply(b)
		b.SetResult(domain.WorstOf(rec.Result, result))
	}

	if err := feedLog(all); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := newNotifier(cfg)
	gate := approval.NewGate(approvals)
	gate.Debug = cfg.General.Debug
	gate.OnPending = func(entry domain.ClasspathEntry, hash string) {
		if err := notifier.Send(ctx, notify.ApprovalRequested(entry, hash)); err != nil {
			log.Printf("[notify] approval request for %s: %v", entry.URL, err)
		}
	}
	runtime := scriptrt.New(cfg.General.WorkDir, timeout)
	runtime.Debug = cfg.General.Debug
	rec := recorder.New(rc, runtime, gate)
	runner := buildhost.NewRunner(rec)
	runner.Debug = cfg.General.Debug

	reports, err := runner.Run(ctx, build)
	if err != nil {
		return err
	}

	if !runNoSave {
		others := make([]domain.Build, len(children))
		for i, c := range children {
			others[i] = c
		}
		if err := records.SaveBuild(build, others...); err != nil {
			return fmt.Errorf("saving build records: %w", err)
		}
	}

	for _, r := range reports {
		if n, ok := notify.ScriptFailed(r); ok {
			if err := notifier.Send(ctx, n); err != nil {
				log.Printf("[notify] %s: %v", r.Build, err)
			}
		}
	}

	printReports(cmd.OutOrStdout(), reports)
	return nil
}

func newNotifier(cfg *config.Config) notify.Notifier {
	var fanout notify.Fanout
	if cfg.Notifications.Desktop {
		fanout = append(fanout, notify.NewDesktop())
	}
	if cfg.Notifications.SlackWebhook != "" {
		fanout = append(fanout, notify.NewSlack(cfg.Notifications.SlackWebhook))
	}
	if len(fanout) == 0 {
		return notify.Discard{}
	}
	return fanout
}

func newBuild(result domain.Result, env map[string]string, echo io.Writer) (*buildhost.Build, error) {
	spec := buildhost.BuildSpec{
		Job:    runJob,
		Number: runNumber,
		Result: result,
		Env:    env,
		Echo:   echo,
	}
	if runAxis == "" {
		return buildhost.NewBuild(spec), nil
	}

	name, values, ok := strings.Cut(runAxis, "=")
	if !ok || name == "" || values == "" {
		return nil, fmt.Errorf("invalid --axis %q, want NAME=V1,V2", runAxis)
	}
	return buildhost.NewAggregate(spec, name, strings.Split(values, ",")), nil
}

func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env %q, want NAME=VALUE", p)
		}
		env[k] = v
	}
	return env, nil
}

// feedLog copies the build log into every build's console
func feedLog(builds []*buildhost.Build) error {
	if runLog == "" {
		return nil
	}

	var r io.Reader = os.Stdin
	if runLog != "-" {
		f, err := os.Open(runLog)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	for _, b := range builds {
		if err := b.Log().Stream(bytes.NewReader(data)); err != nil {
			return err
		}
	}
	return nil
}

func printReports(out io.Writer, reports []*recorder.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUILD\tOUTCOME\tRESULT\tEXECUTION")
	for _, r := range reports {
		outcome := r.Outcome.Kind.String()
		if r.Skipped {
			outcome = "skipped"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Build, outcome, r.Result, r.ExecutionID)
	}
	w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := buildrecord.NewStore(cfg.General.RecordsDir)
	if err != nil {
		return err
	}

	var rec *buildrecord.Record
	if len(args) == 2 {
		number, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid build number %q", args[1])
		}
		rec, err = records.Load(args[0], number)
		if err != nil {
			return err
		}
	} else {
		rec, err = records.Latest(args[0])
		if err != nil {
			return err
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), render.Record(rec))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	approvals, err := openApprovals(cfg)
	if err != nil {
		return err
	}
	defer approvals.Close()

	port := servePort
	if port == 0 {
		port = cfg.API.Port
	}

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, port)
	server := api.NewServer(approvals, addr)
	server.Debug = cfg.General.Debug

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting approval API at http://%s", addr)
	return server.Start(ctx)
}
