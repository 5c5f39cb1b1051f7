package analysis

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/facades/internal/adapters/logger"
	"go.trai.ch/facades/internal/core/ports"
)

// NodeID is the unique identifier for the analyzer Graft node.
const NodeID graft.ID = "adapter.analyzer"

func init() {
	graft.Register(graft.Node[ports.Analyzer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Analyzer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewDigestAnalyzer(log), nil
		},
	})
}
