package phenotype

import (
	"testing"

	"recoverypilot/domain/patient"

	"github.com/stretchr/testify/assert"
)

func healthyPatient() patient.FeatureVector {
	return patient.FeatureVector{
		OxygenSaturation:    98,
		Temperature:         36.8,
		WhiteCellCount:      7,
		PainLevel:           2,
		WoundHealing:        8,
		MedicationAdherence: 0.95,
		ExerciseCompletion:  0.9,
		SleepQuality:        8,
		Appetite:            8,
		Mood:                8,
	}
}

func TestRecommendationsBaseOnly(t *testing.T) {
	recs := Recommendations(FastRecoverer, healthyPatient())
	assert.Equal(t, baseRecommendations[FastRecoverer], recs)
}

func TestRecommendationsFeatureRules(t *testing.T) {
	v := healthyPatient()
	v.PainLevel = 8
	v.Mood = 2
	v.Temperature = 38.4

	recs := Recommendations(Struggling, v)
	assert.Contains(t, recs, "Review pain management plan")
	assert.Contains(t, recs, "Screen for depression")
	assert.Contains(t, recs, "Screen for post-operative infection")
	assert.NotContains(t, recs, "Refer for nutrition consult")
	assert.Equal(t, baseRecommendations[Struggling][0], recs[0])
}

func TestRecommendationsDoNotAliasBase(t *testing.T) {
	v := healthyPatient()
	v.Appetite = 1
	_ = Recommendations(Complex, v)
	assert.Len(t, baseRecommendations[Complex], 3)
}

func TestRecommendationsUnassigned(t *testing.T) {
	const clusterFirst = "Cluster the population before generating recommendations"

	assert.Equal(t, []string{clusterFirst}, Recommendations(Unassigned, healthyPatient()))

	v := healthyPatient()
	v.Appetite = 1
	assert.Equal(t, []string{clusterFirst, "Refer for nutrition consult"}, Recommendations(Unassigned, v))
}
