package phenotype

import "recoverypilot/domain/patient"

// Classification thresholds, applied to a centroid in original units.
const (
	fastMobilityMin     = 6.5
	fastIndependenceMin = 6.5
	fastPainMax         = 4.0
	fastAdherenceMin    = 0.75

	steadyMobilityMin      = 3.5
	steadyIndependenceMin  = 3.5
	steadyPainMax          = 7.0
	steadyComorbiditiesMax = 4.0

	strugglingMobilityMax     = 3.5
	strugglingIndependenceMax = 4.0
	strugglingPainMin         = 5.0
)

// Interpret classifies a denormalized centroid. The first matching rule wins.
func Interpret(centroid patient.FeatureVector) (Phenotype, string) {
	mobility := centroid.MobilityScore
	independence := centroid.FunctionalIndependence
	pain := centroid.PainLevel

	var p Phenotype
	switch {
	case mobility > fastMobilityMin && independence > fastIndependenceMin &&
		pain < fastPainMax && centroid.MedicationAdherence > fastAdherenceMin:
		p = FastRecoverer
	case mobility > steadyMobilityMin && independence > steadyIndependenceMin &&
		pain < steadyPainMax && centroid.ComorbidityCount < steadyComorbiditiesMax:
		p = SteadyRecoverer
	case mobility < strugglingMobilityMax && independence < strugglingIndependenceMax &&
		pain > strugglingPainMin:
		p = Struggling
	default:
		p = Complex
	}
	return p, Narrative(p)
}
