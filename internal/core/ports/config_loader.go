package ports

import "go.trai.ch/facades/internal/core/domain"

// ConfigLoader defines the interface for loading the project description.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration found from the given working directory.
	Load(cwd string) (*domain.Workspace, error)

	// DiscoverRoot walks up from cwd to find the directory containing facades.yaml.
	DiscoverRoot(cwd string) (string, error)
}
