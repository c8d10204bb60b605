package main

import (
	"fmt"
	"os"

	"github.com/cuemby/reportwatch/pkg/display"
	"github.com/cuemby/reportwatch/pkg/registry"
	"github.com/cuemby/reportwatch/pkg/storage"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cat"},
	Short:   "Manage saved category filters",
	Long: `Categories are the event types seen by the viewer. Each one is shown or
hidden, and the choice is saved in the data directory.`,
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(reg *registry.Registry) error {
			if reg.Len() == 0 {
				fmt.Println("No categories seen yet")
				return nil
			}
			display.PrintCategories(os.Stdout, reg.Categories())
			return nil
		})
	},
}

var categoriesEnableCmd = &cobra.Command{
	Use:   "enable NAME... | all",
	Short: "Show categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(reg *registry.Registry) error {
			return setCategories(reg, args, true)
		})
	},
}

var categoriesDisableCmd = &cobra.Command{
	Use:   "disable NAME... | all",
	Short: "Hide categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(reg *registry.Registry) error {
			return setCategories(reg, args, false)
		})
	},
}

var categoriesForgetCmd = &cobra.Command{
	Use:   "forget NAME...",
	Short: "Remove saved categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewBoltStore(cfg.StorePath())
		if err != nil {
			return fmt.Errorf("failed to open category store: %v", err)
		}
		defer store.Close()

		for _, name := range args {
			if err := store.DeleteCategory(name); err != nil {
				return fmt.Errorf("failed to remove %s: %v", name, err)
			}
			fmt.Printf("✓ Removed %s\n", name)
		}
		return nil
	},
}

func init() {
	categoriesCmd.AddCommand(categoriesListCmd)
	categoriesCmd.AddCommand(categoriesEnableCmd)
	categoriesCmd.AddCommand(categoriesDisableCmd)
	categoriesCmd.AddCommand(categoriesForgetCmd)
}

// withRegistry runs fn on a registry seeded from, and saved to, the store
func withRegistry(fn func(reg *registry.Registry) error) error {
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
	return fn(reg)
}
