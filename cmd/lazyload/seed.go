package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/storage"
	"github.com/pders01/lazyload/internal/validation"
)

var (
	seedCount  int
	seedSeed   uint64
	seedFormat string
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Import contacts from a file, or generate sample contacts",
	Long: `Import contacts from a JSON, TOML or YAML file into the database.
Without a file, --count sample contacts are generated instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 500, "Number of sample contacts to generate when no file is given")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0, "Random seed for generated contacts (0 uses the current time)")
	seedCmd.Flags().StringVar(&seedFormat, "format", "", "Input format: json, toml or yaml (default from extension)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	var contacts []*storage.Contact
	if len(args) == 1 {
		p, err := validation.NewPermissivePathValidator().Clean(args[0])
		if err != nil {
			return fmt.Errorf("seed file: %w", err)
		}
		contacts, err = readContacts(p, seedFormat)
		if err != nil {
			return err
		}
	} else {
		if seedCount <= 0 {
			return fmt.Errorf("--count must be positive, got %d", seedCount)
		}
		seed := seedSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		contacts = generateContacts(seedCount, seed)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openEnv(cfg, true)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.repo.SaveContacts(contacts); err != nil {
		return fmt.Errorf("saving contacts: %w", err)
	}
	e.log.Info("contacts imported", paging.Fields{"count": len(contacts)})

	idx, err := e.openIndex()
	if err != nil {
		return err
	}
	if err := idx.Reindex(); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d contacts\n", len(contacts))
	return nil
}
