package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/reportwatch/pkg/api"
	"github.com/cuemby/reportwatch/pkg/client"
	"github.com/cuemby/reportwatch/pkg/config"
	"github.com/cuemby/reportwatch/pkg/display"
	"github.com/cuemby/reportwatch/pkg/events"
	"github.com/cuemby/reportwatch/pkg/manager"
	"github.com/cuemby/reportwatch/pkg/metrics"
	"github.com/cuemby/reportwatch/pkg/registry"
	"github.com/cuemby/reportwatch/pkg/reports"
	"github.com/cuemby/reportwatch/pkg/storage"
	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the event log of a running game",
	Long: `Connect to a game automation server and print its announcements or
reports as they appear.

The viewer connects on startup when --host or --port is given or when
connect_on_startup is set in the configuration. Otherwise type
'connect' at the prompt. Type 'help' for the list of commands.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("host", config.DefaultHost, "Server host")
	watchCmd.Flags().Uint16("port", config.DefaultPort, "Server port")
	watchCmd.Flags().String("source", string(types.SourceAnnouncements), "Event list to follow (announcements, reports)")
	watchCmd.Flags().Float64("interval", config.DefaultInterval, "Auto-refresh interval in seconds")
	watchCmd.Flags().Bool("no-refresh", false, "Disable auto-refresh")
	watchCmd.Flags().String("filter", "", "Only show events containing this text")
	watchCmd.Flags().String("metrics-addr", "", "Serve health and metrics on this address")
	watchCmd.Flags().Bool("repeats", false, "Print a line each time a shown event repeats")
	watchCmd.Flags().Bool("no-color", false, "Disable colours")
}

// applyWatchFlags overrides the loaded configuration with explicit flags
func applyWatchFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		c.Host, _ = flags.GetString("host")
		c.ConnectOnStartup = true
	}
	if flags.Changed("port") {
		c.Port, _ = flags.GetUint16("port")
		c.ConnectOnStartup = true
	}
	if flags.Changed("source") {
		s, _ := flags.GetString("source")
		source, err := types.ParseSource(s)
		if err != nil {
			return err
		}
		c.Source = source
	}
	if flags.Changed("interval") {
		c.AutoRefresh.Interval, _ = flags.GetFloat64("interval")
	}
	if flags.Changed("no-refresh") {
		off, _ := flags.GetBool("no-refresh")
		c.AutoRefresh.Enabled = !off
	}
	if flags.Changed("filter") {
		c.Filter, _ = flags.GetString("filter")
	}
	if flags.Changed("metrics-addr") {
		c.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	return c.Validate()
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := applyWatchFlags(cmd, cfg); err != nil {
		return err
	}
	repeats, _ := cmd.Flags().GetBool("repeats")
	noColor, _ := cmd.Flags().GetBool("no-color")

	// Category flags survive restarts
	store, err := storage.NewBoltStore(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open category store: %v", err)
	}
	defer store.Close()

	seed, err := store.ListCategories()
	if err != nil {
		return fmt.Errorf("failed to load categories: %v", err)
	}
	reg := registry.New(seed...)
	reg.Observe(storage.NewPersister(store))

	model := reports.NewModel(reg)
	filter := display.NewFilter(reg, cfg.Filter)
	printer := display.NewPrinter(os.Stdout, model, filter, display.PrinterOptions{
		NoColor:     noColor,
		ShowRepeats: repeats,
	})
	model.AddSink(printer)

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	go reportEvents(broker.Subscribe(), printer, os.Stderr)

	settings := config.NewSettings(cfg)
	mgr, err := manager.NewManager(&manager.Config{
		Transport: client.NewClient(client.Options{}),
		Settings:  settings,
		Registry:  reg,
		Model:     model,
		Broker:    broker,
	})
	if err != nil {
		return fmt.Errorf("failed to create manager: %v", err)
	}
	mgr.Start()
	defer mgr.Stop()

	errCh := make(chan error, 1)
	if cfg.MetricsAddr != "" {
		collector := metrics.NewCollector(mgr, metrics.DefaultCollectInterval)
		collector.Start()
		defer collector.Stop()

		healthServer := api.NewHealthServer(map[string]api.Check{
			"session": func() (bool, string) {
				state := mgr.State()
				return state == types.StateConnected, state.String()
			},
		})
		go func() {
			if err := healthServer.Start(cfg.MetricsAddr); err != nil {
				errCh <- fmt.Errorf("health server error: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = healthServer.Shutdown(ctx)
		}()
	}

	con := &console{
		ctl:      mgr,
		settings: settings,
		registry: reg,
		filter:   filter,
		out:      os.Stderr,
		host:     cfg.Host,
		port:     cfg.Port,
	}
	if cfg.ConnectOnStartup {
		mgr.Connect(cfg.Host, cfg.Port)
	} else {
		fmt.Fprintln(os.Stderr, "Not connected. Type 'connect' to connect, 'help' for commands.")
	}

	// Wait for interrupt signal, quit, or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	lines := readLines(os.Stdin)
	for {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nShutting down...")
			return nil
		case err := <-errCh:
			return err
		case line, ok := <-lines:
			if !ok {
				// stdin closed, keep following until interrupted
				lines = nil
				continue
			}
			quit, err := con.exec(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// readLines feeds r's lines into the returned channel until EOF
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

// reportEvents prints session events next to the event stream
func reportEvents(sub events.Subscriber, printer *display.Printer, out io.Writer) {
	for ev := range sub {
		switch ev.Type {
		case events.EventStateChanged:
			fmt.Fprintf(out, "[%s]\n", ev.State)
		case events.EventError:
			if ev.Err != nil {
				fmt.Fprintf(out, "Error: %v\n", ev.Err)
			} else {
				fmt.Fprintf(out, "Error: %s\n", ev.Message)
			}
		case events.EventCategoryAdded:
			if !ev.Category.Enabled {
				fmt.Fprintf(out, "New category %s (hidden)\n", ev.Category.Name)
			}
		case events.EventNotification:
			printer.Notify(ev.Color, ev.Message)
		}
	}
}
