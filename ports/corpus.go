package ports

import (
	"context"

	"recoverypilot/domain/patient"
)

// CorpusSupplier yields the seed training population.
type CorpusSupplier interface {
	LoadCorpus(ctx context.Context) ([]patient.FeatureVector, error)
}
