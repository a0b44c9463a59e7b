package testkit

import (
	"context"

	"recoverypilot/adapters/memory"
	"recoverypilot/adapters/rng"
	"recoverypilot/domain/patient"
	"recoverypilot/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	store     *memory.KVStore
	generator *PatientGenerator
}

// NewTestKit creates a test kit backed by the default synthetic cohort and an
// empty in-memory store
func NewTestKit() *TestKit {
	return NewTestKitWithConfig(DefaultPatientConfig())
}

// NewTestKitWithConfig creates a test kit with a custom synthetic cohort
func NewTestKitWithConfig(config PatientGeneratorConfig) *TestKit {
	return &TestKit{
		store:     memory.NewKVStore(),
		generator: NewPatientGenerator(config),
	}
}

// CorpusSupplier returns the synthetic corpus supplier
func (t *TestKit) CorpusSupplier() ports.CorpusSupplier {
	return t.generator
}

// KVStore returns the shared in-memory store
func (t *TestKit) KVStore() *memory.KVStore {
	return t.store
}

// RNGAdapter returns the seeded stream source used in production
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewSource()
}

// StaticCorpus is a CorpusSupplier over a fixed slice
type StaticCorpus []patient.FeatureVector

// LoadCorpus returns a copy of the slice
func (c StaticCorpus) LoadCorpus(ctx context.Context) ([]patient.FeatureVector, error) {
	return append([]patient.FeatureVector(nil), c...), nil
}
