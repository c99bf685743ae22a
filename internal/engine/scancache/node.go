package scancache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pwa/internal/adapters/fs" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pwa/internal/core/ports"
)

// NodeID is the unique identifier for the scan cache Graft node.
const NodeID graft.ID = "engine.scancache"

func init() {
	graft.Register(graft.Node[*Cache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HasherNodeID},
		Run: func(ctx context.Context) (*Cache, error) {
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return New(hasher), nil
		},
	})
}
