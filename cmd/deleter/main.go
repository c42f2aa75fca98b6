package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrcichra/alert-deleter/internal/agent"
	"github.com/jrcichra/alert-deleter/internal/api"
	"github.com/jrcichra/alert-deleter/internal/config"
	"github.com/jrcichra/alert-deleter/internal/k8s"
	"github.com/jrcichra/alert-deleter/internal/leader"
	"github.com/jrcichra/alert-deleter/internal/logger"
	"github.com/jrcichra/alert-deleter/internal/metrics"
	"github.com/jrcichra/alert-deleter/internal/poller"
	"github.com/jrcichra/alert-deleter/internal/remediate"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))

	var (
		kubeconfig, contextName string
		cfgPath                 string

		amURL       string
		alertNames  string
		intervalSec int
		activeState string

		podName    string
		leaseName  string
		leaseNS    string
		leaseSecs  int
		httpAddr   string
	)

	root := &cobra.Command{
		Use:   "alert-deleter",
		Short: "Single-leader Alertmanager remediation agent (delete pods / forward webhooks)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cfgPath != "" {
				var err error
				cfg, err = config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			// Flags set on the command line win over the file.
			if cmd.Flags().Changed("alertmanager-url") || cfg.AlertmanagerURL == "" {
				cfg.AlertmanagerURL = amURL
			}
			if cmd.Flags().Changed("alert-names") || len(cfg.AlertNames) == 0 {
				cfg.AlertNames = config.SplitNames(alertNames)
			}
			if cmd.Flags().Changed("interval") {
				cfg.Interval = time.Duration(intervalSec) * time.Second
			}
			if cmd.Flags().Changed("active-state") {
				cfg.ActiveState = activeState
			}
			if cmd.Flags().Changed("pod-name") || cfg.PodName == "" {
				cfg.PodName = podName
			}
			if cmd.Flags().Changed("lease-name") {
				cfg.LeaseName = leaseName
			}
			if cmd.Flags().Changed("lease-namespace") || cfg.LeaseNamespace == "" {
				cfg.LeaseNamespace = leaseNS
			}
			if cmd.Flags().Changed("lease-secs") {
				cfg.LeaseTTL = time.Duration(leaseSecs) * time.Second
			}
			if cmd.Flags().Changed("http-addr") {
				cfg.HTTPAddr = httpAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(log, cfg, kubeconfig, contextName)
		},
	}

	root.PersistentFlags().StringVar(&kubeconfig, "kubeconfig", "", "path to kubeconfig (out-of-cluster)")
	root.PersistentFlags().StringVar(&contextName, "context", "", "kubeconfig context to use")
	root.Flags().StringVar(&cfgPath, "config", "", "optional YAML config path (flags override)")

	root.Flags().StringVar(&amURL, "alertmanager-url", os.Getenv("ALERTMANAGER_URL"), "Alertmanager endpoint to poll alerts from")
	root.Flags().StringVar(&alertNames, "alert-names", os.Getenv("ALERT_NAMES"), "comma-separated allow-list of alertname values")
	root.Flags().IntVar(&intervalSec, "interval", 60, "seconds between alert polls")
	root.Flags().StringVar(&activeState, "active-state", "active", "status.state literal the alert source uses for firing alerts")

	root.Flags().StringVar(&podName, "pod-name", os.Getenv("POD_NAME"), "this replica's identity for leader election")
	root.Flags().StringVar(&leaseName, "lease-name", "alert-deleter", "name of the shared Lease resource")
	root.Flags().StringVar(&leaseNS, "lease-namespace", k8s.Namespace(), "namespace of the Lease resource")
	root.Flags().IntVar(&leaseSecs, "lease-secs", 10, "lease TTL in seconds")
	root.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address for /metrics, /healthz, /readyz, /status")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("alert-deleter %s (%s) %s\n", version, commit, date)
		},
	})

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func run(log *logger.Logger, cfg config.Config, kubeconfig, contextName string) error {
	ctx := withSignals()

	cs, err := k8s.NewClient(kubeconfig, contextName)
	if err != nil {
		return fmt.Errorf("kubernetes client: %w", err)
	}
	metrics.MustRegister()

	lock := leader.NewLeaseLock(cs, leader.Params{
		HolderID:  cfg.PodName,
		LeaseName: cfg.LeaseName,
		Namespace: cfg.LeaseNamespace,
		TTL:       cfg.LeaseTTL,
	})
	coord := leader.NewCoordinator(lock, log, func() {
		// Confirmed loss of the lease; another replica takes over.
		os.Exit(1)
	})

	a := agent.New(log,
		poller.New(cfg.AlertmanagerURL, 10*time.Second),
		remediate.NewDispatcher(log, remediate.NewPodKiller(log, cs), remediate.NewWebhook(log)),
		cfg.AlertNames, cfg.ActiveState, cfg.Interval)

	srv := api.NewServer(api.Deps{Log: log, State: coord.State(), Agent: a}, api.Config{Addr: cfg.HTTPAddr})
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	// Block until this replica wins the lease, then keep renewing it in the
	// background. The main loop itself never touches the lease again.
	if err := coord.AcquireOrBlock(ctx); err != nil {
		return fmt.Errorf("leader election: %w", err)
	}
	go coord.RunRenewal(ctx)

	a.Run(ctx)
	return nil
}

func withSignals() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-c; cancel() }()
	return ctx
}
