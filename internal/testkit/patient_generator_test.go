package testkit

import (
	"context"
	"testing"

	"recoverypilot/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientGenerator_Default(t *testing.T) {
	patients, err := NewPatientGenerator(DefaultPatientConfig()).LoadCorpus(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 200)

	ids := map[core.PatientID]bool{}
	for i, p := range patients {
		assert.NoError(t, p.Validate(), "patient %d should be valid", i)
		assert.False(t, p.ID.IsEmpty())
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true
	}
	assert.Equal(t, core.PatientID("patient_0001"), patients[0].ID)
}

func TestPatientGenerator_Deterministic(t *testing.T) {
	a, err := NewPatientGenerator(DefaultPatientConfig()).Generate()
	require.NoError(t, err)
	b, err := NewPatientGenerator(DefaultPatientConfig()).Generate()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cfg := DefaultPatientConfig()
	cfg.Seed = 8
	c, err := NewPatientGenerator(cfg).Generate()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestPatientGenerator_SingleArchetype(t *testing.T) {
	cfg := PatientGeneratorConfig{PatientCount: 50, Seed: 1, StrugglingWeight: 1}
	patients, err := NewPatientGenerator(cfg).Generate()
	require.NoError(t, err)

	var pain, mobility float64
	for _, p := range patients {
		pain += p.PainLevel
		mobility += p.MobilityScore
	}
	assert.Greater(t, pain/50, 6.0)
	assert.Less(t, mobility/50, 3.5)
}

func TestPatientGenerator_InvalidConfig(t *testing.T) {
	_, err := NewPatientGenerator(PatientGeneratorConfig{PatientCount: 10}).Generate()
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = NewPatientGenerator(PatientGeneratorConfig{PatientCount: 10, FastWeight: -1, SteadyWeight: 2}).Generate()
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestStaticCorpusCopies(t *testing.T) {
	corpus := StaticCorpus{{ID: "a"}}
	got, err := corpus.LoadCorpus(context.Background())
	require.NoError(t, err)
	got[0].ID = "b"
	assert.Equal(t, core.PatientID("a"), corpus[0].ID)
	assert.Len(t, got, 1)
}
