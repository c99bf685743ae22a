package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pwa/internal/adapters/artifact"  //nolint:depguard // Wired in app layer
	"go.trai.ch/pwa/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pwa/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/pwa/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pwa/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/pwa/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pwa/internal/core/ports"
	"go.trai.ch/pwa/internal/engine/scancache"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.ScannerNodeID,
			fs.ResolverNodeID,
			artifact.NodeID,
			scancache.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	scanner, err := graft.Dep[ports.ProjectScanner](ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := graft.Dep[ports.InputResolver](ctx)
	if err != nil {
		return nil, err
	}
	writer, err := graft.Dep[ports.ArtifactWriter](ctx)
	if err != nil {
		return nil, err
	}
	cache, err := graft.Dep[*scancache.Cache](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	newWatcher, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, scanner, resolver, writer, cache, log, tracer, newWatcher), nil
}
