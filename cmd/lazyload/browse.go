package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/lazyload/internal/cache"
	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/launch"
	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/search"
	"github.com/pders01/lazyload/internal/source"
	"github.com/pders01/lazyload/internal/storage"
	"github.com/pders01/lazyload/internal/tui"
)

var (
	browseMode    string
	browseReindex bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the contact browser (default command)",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseMode, "mode", "", "Source mode: offset, cursor or server (overrides config)")
	browseCmd.Flags().BoolVar(&browseReindex, "reindex", false, "Rebuild the full-text index before starting")
}

func contactID(c storage.Contact) string { return c.ID }

// collectionOptions maps configuration onto the paging collection.
func collectionOptions(cfg *config.Config, log paging.Logger) []paging.Option[storage.Contact] {
	opts := []paging.Option[storage.Contact]{
		paging.WithPageSize[storage.Contact](cfg.Paging.PageSize),
		paging.WithScrollThreshold[storage.Contact](cfg.Paging.ScrollThreshold),
		paging.WithDebounce[storage.Contact](cfg.Paging.Debounce),
		paging.WithLogger[storage.Contact](log),
	}
	// Cursor pages cannot carry a filter, so the cursor source always
	// narrows locally.
	if cfg.Paging.PostFilter || cfg.Source.Mode == "cursor" {
		opts = append(opts, paging.WithPostFilter(search.MatchContact))
	}
	return opts
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if browseMode != "" {
		cfg.Source.Mode = browseMode
	}
	local := cfg.Source.Mode != "server"

	if !quiet {
		tui.ShowBanner(os.Stdout, Version)
	}

	e, err := openEnv(cfg, local)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, err := source.New(e.cfg.Source, e.repo)
	if err != nil {
		return err
	}

	store, provider, err := cache.OpenStore[storage.Contact](ctx, e.cfg.Cache)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	if provider != nil {
		e.closers = append(e.closers, func() error { return provider.Close(context.Background()) })
	}

	failures := make(chan *paging.Failure, 16)
	opts := collectionOptions(e.cfg, e.log)
	opts = append(opts, paging.WithFailureHandler[storage.Contact](func(f *paging.Failure) {
		select {
		case failures <- f:
		default:
		}
	}))
	if store != nil {
		opts = append(opts, paging.WithStore(store, e.cfg.Paging.CachePrefix))
	}

	appOpts := []tui.Option{
		tui.WithContext(ctx),
		tui.WithFailures(failures),
		tui.WithOpener(launch.New(e.cfg.Open)),
	}
	if local {
		idx, err := e.openIndex()
		if err != nil {
			return err
		}
		if browseReindex {
			if err := idx.Reindex(); err != nil {
				return fmt.Errorf("rebuilding index: %w", err)
			}
		}
		opts = append(opts, paging.WithNotifier(idx, contactID))
		appOpts = append(appOpts, tui.WithSearcher(idx))
	}

	contacts := paging.New(src, opts...)
	defer contacts.Close()

	tui.ApplyColors(e.cfg.UI.Colors)
	app := tui.NewApp(contacts, e.cfg, appOpts...)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
