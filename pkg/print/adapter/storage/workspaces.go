package storage

import "fmt"

// Connection names of the pipeline's working areas, as configured under
// "adapter.storage" in the application configuration.
const (
	// ConnTemplates is the template library the renderer resolves template
	// names against.
	ConnTemplates = "templates"
	// ConnSpool is the staging area for intermediate CSV files.
	ConnSpool = "spool"
	// ConnArtifacts is the output directory for produced documents.
	ConnArtifacts = "artifacts"
)

// Workspaces bundles the three working areas of the print pipeline.
type Workspaces struct {
	// Templates is the template library store.
	Templates Store
	// Spool is the intermediate staging store.
	Spool Store
	// Artifacts is the output artifact store.
	Artifacts Store
}

// NewWorkspaces resolves the pipeline's three named connections from the
// given provider.
func NewWorkspaces(p Provider) (*Workspaces, error) {
	templates, err := p.GetConnection(ConnTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s' storage connection: %w", ConnTemplates, err)
	}
	spool, err := p.GetConnection(ConnSpool)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s' storage connection: %w", ConnSpool, err)
	}
	artifacts, err := p.GetConnection(ConnArtifacts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s' storage connection: %w", ConnArtifacts, err)
	}
	return &Workspaces{
		Templates: templates,
		Spool:     spool,
		Artifacts: artifacts,
	}, nil
}
