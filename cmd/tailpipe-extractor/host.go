package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
	"github.com/turbot/tailpipe-extractor/artifact_source"
	"github.com/turbot/tailpipe-extractor/config"
	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/extractor"
	"github.com/turbot/tailpipe-extractor/registry"
	"github.com/turbot/tailpipe-extractor/workspace"
)

// host owns everything the extractors share
type host struct {
	manager           *extractor.Manager
	extractorRegistry *registry.FileExtractorRegistry

	closers []func() error
}

func newHost(ctx context.Context) (_ *host, err error) {
	cfg, err := config.Load(viper.GetString(configFlag))
	if err != nil {
		return nil, err
	}

	h := &host{}
	defer func() {
		if err != nil {
			_ = h.Close()
		}
	}()

	dataSources, err := data_source.NewRegistry(cfg.DataSources...)
	if err != nil {
		return nil, err
	}
	h.closers = append(h.closers, dataSources.Close)

	fetcher, err := artifact_source.NewFetcher(cfg.Fetch, artifact_source.WithAppRoot(cfg.GetAppRoot()))
	if err != nil {
		return nil, err
	}
	h.closers = append(h.closers, fetcher.Close)

	workspaceDir, err := cfg.GetWorkspaceDir()
	if err != nil {
		return nil, err
	}

	statePath, err := cfg.GetStatePath()
	if err != nil {
		return nil, err
	}
	h.extractorRegistry, err = registry.NewFileExtractorRegistry(statePath)
	if err != nil {
		return nil, err
	}

	opts := []extractor.ExtractorOption{
		extractor.WithFetcher(fetcher),
		extractor.WithWorkspaceManager(workspace.NewManager(workspaceDir)),
		extractor.WithExtractorRegistry(h.extractorRegistry),
		extractor.WithObserver(newEventLogger()),
	}

	if cfg.MetadataRegistry != nil {
		metadata, err := registry.NewSqliteMetadataRegistry(cfg.MetadataRegistry.Path)
		if err != nil {
			return nil, err
		}
		h.closers = append(h.closers, metadata.Close)
		for _, name := range dataSources.Names() {
			if err := metadata.Register(ctx, name); err != nil {
				return nil, fmt.Errorf("failed to register data source %s: %w", name, err)
			}
		}
		opts = append(opts, extractor.WithMetadataRegistry(metadata))
	}

	var extractors []*extractor.Extractor
	for _, def := range cfg.ExtractorDefinitions() {
		e, err := extractor.New(def, dataSources, opts...)
		if err != nil {
			return nil, err
		}
		extractors = append(extractors, e)
	}

	h.manager, err = extractor.NewManager(cfg.GetMaxConcurrency(), extractors...)
	if err != nil {
		return nil, err
	}
	h.manager.RestoreState(h.extractorRegistry)

	slog.Info("Loaded extractors", "count", len(extractors), "state", statePath)
	return h, nil
}

func (h *host) Close() error {
	var errs []error
	// close in reverse order of creation
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
