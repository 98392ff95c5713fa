package tweetabs_internal

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bgp59/logrusx"
)

// The runner is the main entry point for a tweetabs instance.
//
// It loads the configuration, builds the shared scheduler/rate budget/view
// sink, constructs whichever of the fixed periodic tabs the config selects,
// wires up any file-backed source/sink tabs, and blocks until a shutdown
// signal arrives. On shutdown it closes every tab (flushing unsaved
// IdOutput tabs) and stops the scheduler, within a grace period enforced by
// a watchdog timer.

const (
	CONFIG_FLAG_NAME      = "config"
	INSTANCE_DEFAULT      = "tweetabs"
	RUNNER_WATCHDOG_SLACK = 1 * time.Second
)

var (
	// Instance should be primed w/ the desired default *before* invoking the
	// runner, most likely from an init(). Its value may be overridden by
	// config and command line args.
	Instance string = INSTANCE_DEFAULT

	// Build info, normally set via init() by the user of this package.
	Version string
	GitInfo string
)

// Command line args; defined at package scope since flags are parsed in
// main.
var (
	versionArg = flag.Bool(
		"version",
		false,
		FormatFlagUsage(`Print the version and exit`),
	)

	configFileArg = flag.String(
		CONFIG_FLAG_NAME,
		fmt.Sprintf("%s-config.yaml", INSTANCE_DEFAULT),
		`Config file to load`,
	)

	instanceArg = flag.String(
		"instance",
		"",
		FormatFlagUsage(`Override the "tweetabs_config.instance" config setting`),
	)
)

func init() {
	logrusx.EnableLoggerArgs()
}

var runnerLog = NewCompLogger("runner")

// RemoteApiFactory builds the concrete RemoteApi implementation talking to
// the actual remote service; it is supplied by main rather than this
// package, since authentication and transport are deployment-specific.
type RemoteApiFactory func(cfg *RuntimeConfig) (RemoteApi, error)

// Run is the entry point for an actual tweetabs instance. tabsConfig should
// be primed with defaults before the call; newRemoteApi builds the
// concrete client. The return value is the process exit code.
func Run(tabsConfig *TabsConfig, newRemoteApi RemoteApiFactory) int {
	if !flag.Parsed() {
		flag.Parse()
	}

	if *versionArg {
		fmt.Fprintf(os.Stderr, "Version: %s, GitInfo: %s\n", Version, GitInfo)
		return 0
	}

	runtimeConfig, err := LoadConfig(*configFileArg, tabsConfig, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
		return 1
	}

	if *instanceArg != "" {
		runtimeConfig.Instance = *instanceArg
	}
	logrusx.ApplySetLoggerArgs(runtimeConfig.LoggerConfig)

	if err := SetLogger(runtimeConfig.LoggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting the logger: %v\n", err)
		return 1
	}
	Instance = runtimeConfig.Instance

	var shutdownTimer *time.Timer
	if runtimeConfig.ShutdownMaxWait > 0 {
		shutdownTimer = time.NewTimer(1 * time.Hour)
		shutdownTimer.Stop()
		defer shutdownTimer.Stop()
	}

	api, err := newRemoteApi(runtimeConfig)
	if err != nil {
		runnerLog.Error(err)
		return 1
	}
	if runtimeConfig.Threaded {
		threaded := NewThreadedRemoteApi(api)
		threaded.Start()
		defer threaded.Stop()
		api = threaded
	}

	sink := LogViewSink{}
	registry := NewRegistry(sink)
	budget := NewRateBudget(runtimeConfig.RateBudgetConfig)
	sched := NewScheduler(runtimeConfig.SchedulerConfig, budget, RealClock)

	caller := NewRemoteApiCaller(api, sink)
	sched.AddTask(NewRateProbeTask(caller, budget))

	// The graph is built before the scheduler starts and closed after it
	// quits (deferred calls run in reverse order), so no tab is touched
	// while the loop goroutine runs tasks.
	if err := BuildTabs(registry, sched, caller, tabsConfig); err != nil {
		runnerLog.Error(err)
		return 1
	}
	defer CloseAllTabs(registry)
	sched.Start()
	defer sched.Quit()

	runnerLog.Infof("instance: %s", Instance)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	if runtimeConfig.ShutdownMaxWait == 0 {
		runnerLog.Fatalf("%s signal received, force exit", sig)
	} else {
		runnerLog.Warnf("%s signal received, shutting down", sig)
	}

	if shutdownTimer != nil {
		go func() {
			shutdownTimer.Reset(runtimeConfig.ShutdownMaxWait + RUNNER_WATCHDOG_SLACK)
			<-shutdownTimer.C
			runnerLog.Fatalf("shutdown timed out after %s, force exit", runtimeConfig.ShutdownMaxWait)
		}()
	}

	return 0
}
