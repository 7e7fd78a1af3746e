package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/lazyload/internal/validation"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every contact to stdout or a file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: json, toml or yaml (default from --output extension, else toml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	format := exportFormat
	if format == "" && exportOutput == "" {
		format = "toml"
	}
	format, err := formatOf(format, exportOutput)
	if err != nil {
		return err
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

	contacts, err := e.repo.ListContacts(0, 0, "")
	if err != nil {
		return fmt.Errorf("listing contacts: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		// The output location is always an explicit user choice.
		p, err := validation.NewPermissivePathValidator().File(exportOutput)
		if err != nil {
			return fmt.Errorf("output path: %w", err)
		}
		f, err := os.Create(p)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return writeContacts(w, format, contacts)
}
