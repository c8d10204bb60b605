package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/reportwatch/pkg/api"
	"github.com/cuemby/reportwatch/pkg/config"
	"github.com/cuemby/reportwatch/pkg/gamelog"
	"github.com/cuemby/reportwatch/pkg/log"
	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a simulated game server",
	Long: `Run a gRPC server that exposes a simulated game event log.

Entries are appended from a YAML script (see --script), or from a built-in
script when none is given. Point 'reportwatch watch' at it to try the
viewer without a running game.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", fmt.Sprintf(":%d", config.DefaultPort), "Address to listen on")
	serveCmd.Flags().String("script", "", "YAML script of log entries (default: built-in)")
	serveCmd.Flags().String("server-version", Version, "Version reported by GetVersion")
	serveCmd.Flags().String("game-version", "0.47.05", "Version reported by GetDFVersion")
	serveCmd.Flags().Int("retention", gamelog.DefaultRetention, "Entries kept per list")
	serveCmd.Flags().Bool("notify", false, "Push every new entry as a server notification")
	serveCmd.Flags().String("metrics-addr", "", "Serve health and metrics on this address")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	scriptPath, _ := cmd.Flags().GetString("script")
	serverVersion, _ := cmd.Flags().GetString("server-version")
	gameVersion, _ := cmd.Flags().GetString("game-version")
	retention, _ := cmd.Flags().GetInt("retention")
	notify, _ := cmd.Flags().GetBool("notify")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	var (
		script *gamelog.Script
		err    error
	)
	if scriptPath != "" {
		script, err = gamelog.LoadScript(scriptPath)
	} else {
		script, err = gamelog.ParseScript([]byte(gamelog.DefaultScript))
	}
	if err != nil {
		return err
	}

	gl := gamelog.New(gamelog.Options{
		Retention: retention,
		Start:     types.Time(script.StartYear) * types.TicksPerYear,
	})
	srv := api.NewServer(gl, api.Config{
		ServerVersion: serverVersion,
		GameVersion:   gameVersion,
	})

	fmt.Println("Starting simulated game server...")
	fmt.Printf("  Address: %s\n", addr)
	fmt.Printf("  Entries: %d every %s (loop: %t)\n", len(script.Entries), script.StepDuration(), script.Loop)
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(addr); err != nil {
			return fmt.Errorf("API server error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		err := script.Play(ctx, gl, func(r types.Report) {
			if notify && r.Repeat == 0 {
				srv.Notify(types.NewEvent(r).Color, r.Text)
			}
		})
		if err == nil {
			log.Info("Script finished, log is now static")
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if metricsAddr != "" {
		healthServer := api.NewHealthServer(nil)
		g.Go(func() error {
			if err := healthServer.Start(metricsAddr); err != nil {
				return fmt.Errorf("health server error: %v", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return healthServer.Shutdown(shutdownCtx)
		})
	}

	fmt.Println("Server is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case <-ctx.Done():
	}

	cancel()
	srv.Stop()
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println("✓ Shutdown complete")
	return nil
}
