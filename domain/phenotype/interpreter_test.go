package phenotype

import (
	"testing"

	"recoverypilot/domain/patient"

	"github.com/stretchr/testify/assert"
)

func centroid(mobility, independence, pain, adherence, comorbidities float64) patient.FeatureVector {
	return patient.FeatureVector{
		MobilityScore:          mobility,
		FunctionalIndependence: independence,
		PainLevel:              pain,
		MedicationAdherence:    adherence,
		ComorbidityCount:       comorbidities,
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name     string
		centroid patient.FeatureVector
		want     Phenotype
	}{
		{"fast recoverer", centroid(8, 8, 2, 0.9, 1), FastRecoverer},
		{"fast thresholds are strict", centroid(6.5, 8, 2, 0.9, 1), SteadyRecoverer},
		{"low adherence drops to steady", centroid(8, 8, 2, 0.6, 1), SteadyRecoverer},
		{"steady recoverer", centroid(5, 5, 5, 0.8, 2), SteadyRecoverer},
		{"comorbidities block steady", centroid(5, 5, 5, 0.8, 4), Complex},
		{"struggling", centroid(2, 2, 8, 0.5, 3), Struggling},
		{"struggling needs high pain", centroid(2, 2, 5, 0.5, 3), Complex},
		{"mixed profile", centroid(8, 2, 8, 0.9, 1), Complex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, narrative := Interpret(tt.centroid)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Narrative(tt.want), narrative)
			assert.Greater(t, len(narrative), 20)
		})
	}
}

func TestInterpretNeverUnassigned(t *testing.T) {
	for m := 0.0; m <= 10; m += 2.5 {
		for p := 0.0; p <= 10; p += 2.5 {
			got, _ := Interpret(centroid(m, m, p, 0.5, 2))
			assert.NotEqual(t, Unassigned, got)
		}
	}
}

func TestNarrativesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range append(All, Unassigned) {
		n := Narrative(p)
		assert.Greater(t, len(n), 20, "narrative for %s too short", p)
		assert.False(t, seen[n], "duplicate narrative for %s", p)
		seen[n] = true
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, Struggling, Parse("struggling"))
	assert.Equal(t, Unassigned, Parse("bogus"))
	assert.Equal(t, Narrative(Unassigned), Narrative(Phenotype("bogus")))
}
