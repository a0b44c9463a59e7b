package phenotype

import "recoverypilot/domain/patient"

var baseRecommendations = map[Phenotype][]string{
	FastRecoverer: {
		"Continue current recovery plan",
		"Progress to return-to-activity guidance",
		"Reduce check-in frequency to weekly",
	},
	SteadyRecoverer: {
		"Maintain standard recovery pathway",
		"Continue progressive physiotherapy",
		"Schedule routine follow-up",
	},
	Struggling: {
		"Escalate to clinician review within 48 hours",
		"Increase monitoring frequency to daily",
		"Refer to intensive rehabilitation program",
	},
	Complex: {
		"Arrange multidisciplinary case review",
		"Individualize recovery goals",
		"Review comorbidity management",
	},
	Unassigned: {
		"Cluster the population before generating recommendations",
	},
}

// featureRule fires a recommendation when a raw patient feature crosses a threshold.
type featureRule struct {
	applies func(v patient.FeatureVector) bool
	text    string
}

var featureRules = []featureRule{
	{func(v patient.FeatureVector) bool { return v.PainLevel >= 7 }, "Review pain management plan"},
	{func(v patient.FeatureVector) bool { return v.Mood < 4 }, "Screen for depression"},
	{func(v patient.FeatureVector) bool { return v.MedicationAdherence < 0.7 }, "Provide medication adherence counseling"},
	{func(v patient.FeatureVector) bool { return v.SleepQuality < 4 }, "Assess sleep hygiene and sleep disturbances"},
	{func(v patient.FeatureVector) bool { return v.Appetite < 4 }, "Refer for nutrition consult"},
	{func(v patient.FeatureVector) bool { return v.WoundHealing < 4 }, "Schedule wound-care review"},
	{func(v patient.FeatureVector) bool { return v.ExerciseCompletion < 0.5 }, "Reinforce home exercise plan"},
	{func(v patient.FeatureVector) bool { return v.OxygenSaturation < 92 }, "Perform respiratory assessment"},
	{func(v patient.FeatureVector) bool { return v.Temperature >= 38 }, "Screen for post-operative infection"},
	{func(v patient.FeatureVector) bool { return v.WhiteCellCount > 11 }, "Order infection labs for elevated white-cell count"},
}

// Recommendations returns the phenotype's base actions followed by any
// feature-specific actions triggered by the patient's raw values.
func Recommendations(p Phenotype, v patient.FeatureVector) []string {
	recs := append([]string(nil), baseRecommendations[p]...)
	for _, rule := range featureRules {
		if rule.applies(v) {
			recs = append(recs, rule.text)
		}
	}
	return recs
}
