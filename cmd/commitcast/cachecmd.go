package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/commitcast/commitcast/internal/cache"
	"github.com/commitcast/commitcast/internal/config"
)

var cacheClear bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show narration cache statistics",
	RunE:  runCache,
}

func init() {
	cacheCmd.Flags().BoolVar(&cacheClear, "clear", false, "Delete all cached audio")
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c, err := cache.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	if cacheClear {
		if err := c.Purge(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Println("Narration cache cleared.")
		return nil
	}

	count, size, err := c.Stats()
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}
	fmt.Printf("Narration cache: %d entries, %s\n", count, humanize.Bytes(uint64(size)))
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	return nil
}
