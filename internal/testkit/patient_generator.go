package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"recoverypilot/domain/core"
	"recoverypilot/domain/patient"
)

// PatientGeneratorConfig configures the synthetic post-surgical cohort
type PatientGeneratorConfig struct {
	PatientCount int   `json:"patient_count"`
	Seed         int64 `json:"seed"`

	// Archetype mix; weights are normalized and need not sum to 1.
	FastWeight       float64 `json:"fast_weight"`
	SteadyWeight     float64 `json:"steady_weight"`
	StrugglingWeight float64 `json:"struggling_weight"`
	ComplexWeight    float64 `json:"complex_weight"`
}

// DefaultPatientConfig returns the standard 200-patient seed cohort
func DefaultPatientConfig() PatientGeneratorConfig {
	return PatientGeneratorConfig{
		PatientCount:     200,
		Seed:             7,
		FastWeight:       0.30,
		SteadyWeight:     0.35,
		StrugglingWeight: 0.20,
		ComplexWeight:    0.15,
	}
}

// profile is a mean/spread pair for one feature within an archetype.
type profile struct {
	mean, sd float64
}

// archetype gives per-feature distributions in canonical feature order.
type archetype [patient.FeatureCount]profile

var (
	fastArchetype = archetype{
		{52, 10}, {25, 3}, {0.5, 0.6}, // demographics
		{72, 6}, {122, 8}, {98, 1}, {36.8, 0.2}, // vitals
		{13.8, 0.8}, {7, 1.2}, {0.85, 0.12}, {4.1, 0.3}, // labs
		{1.8, 0.8}, {8.4, 0.7}, {8.6, 0.7}, {0.94, 0.04}, {12, 5}, {0.9, 0.07}, {8, 0.8}, {8, 0.8}, {8.1, 0.8}, {8.6, 0.7},
	}
	steadyArchetype = archetype{
		{63, 9}, {28, 3.5}, {1.8, 0.9},
		{78, 7}, {130, 10}, {96.5, 1.2}, {37, 0.25},
		{12.6, 1}, {8, 1.5}, {1.0, 0.15}, {3.7, 0.3},
		{4, 1}, {5.8, 0.9}, {6.5, 0.9}, {0.82, 0.07}, {20, 7}, {0.7, 0.1}, {6.2, 1}, {6.3, 1}, {6.4, 1}, {6, 0.9},
	}
	strugglingArchetype = archetype{
		{72, 8}, {31, 4}, {3.2, 1.1},
		{90, 9}, {142, 12}, {93.5, 1.8}, {37.7, 0.4},
		{10.8, 1.1}, {11, 2}, {1.4, 0.25}, {3.1, 0.35},
		{7.8, 0.9}, {2, 0.8}, {3.8, 1}, {0.6, 0.1}, {25, 9}, {0.35, 0.12}, {3.5, 1}, {3.6, 1}, {3.4, 1}, {2.5, 0.9},
	}
	complexArchetype = archetype{
		{68, 9}, {33, 5}, {5.5, 1.2},
		{84, 9}, {138, 14}, {95, 1.5}, {37.3, 0.4},
		{11.5, 1.2}, {9.5, 2}, {1.6, 0.35}, {3.3, 0.35},
		{5.5, 1.2}, {5, 1.3}, {5, 1.3}, {0.7, 0.12}, {30, 10}, {0.55, 0.15}, {5, 1.3}, {4.5, 1.3}, {4.8, 1.2}, {4.8, 1.2},
	}
)

// PatientGenerator produces a reproducible synthetic seed corpus drawn from
// four recovery archetypes. It implements ports.CorpusSupplier.
type PatientGenerator struct {
	config PatientGeneratorConfig
}

// NewPatientGenerator creates a new patient generator
func NewPatientGenerator(config PatientGeneratorConfig) *PatientGenerator {
	return &PatientGenerator{config: config}
}

// LoadCorpus generates the configured cohort. The same config always yields
// the same patients.
func (g *PatientGenerator) LoadCorpus(ctx context.Context) ([]patient.FeatureVector, error) {
	return g.Generate()
}

// Generate builds PatientCount patients
func (g *PatientGenerator) Generate() ([]patient.FeatureVector, error) {
	if g.config.PatientCount < 0 {
		return nil, core.NewInvalidInputError("patient count cannot be negative")
	}
	weights := []float64{g.config.FastWeight, g.config.SteadyWeight, g.config.StrugglingWeight, g.config.ComplexWeight}
	var total float64
	for _, w := range weights {
		if w < 0 {
			return nil, core.NewInvalidInputError("archetype weights cannot be negative")
		}
		total += w
	}
	if total == 0 && g.config.PatientCount > 0 {
		return nil, core.NewInvalidInputError("at least one archetype weight must be positive")
	}

	rng := rand.New(rand.NewSource(g.config.Seed))
	archetypes := []*archetype{&fastArchetype, &steadyArchetype, &strugglingArchetype, &complexArchetype}

	patients := make([]patient.FeatureVector, g.config.PatientCount)
	for i := range patients {
		a := archetypes[pickArchetype(weights, total, rng)]
		id := core.PatientID(fmt.Sprintf("patient_%04d", i+1))
		v, err := samplePatient(id, a, rng)
		if err != nil {
			return nil, err
		}
		patients[i] = v
	}
	return patients, nil
}

func pickArchetype(weights []float64, total float64, rng *rand.Rand) int {
	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

// integerFeatures are rounded after sampling.
var integerFeatures = map[string]bool{
	patient.FeatureAge:              true,
	patient.FeatureComorbidityCount: true,
	patient.FeatureDaysSinceSurgery: true,
}

func samplePatient(id core.PatientID, a *archetype, rng *rand.Rand) (patient.FeatureVector, error) {
	values := make([]float64, patient.FeatureCount)
	for d, name := range patient.FeatureNames {
		x := a[d].mean + rng.NormFloat64()*a[d].sd
		if integerFeatures[name] {
			x = math.Round(x)
		}
		values[d] = clampFeature(name, x)
	}
	return patient.FromValues(id, values)
}

func clampFeature(name string, x float64) float64 {
	switch name {
	case patient.FeatureMedicationAdherence, patient.FeatureExerciseCompletion:
		return math.Min(math.Max(x, 0), 1)
	case patient.FeaturePainLevel, patient.FeatureMobilityScore, patient.FeatureWoundHealing,
		patient.FeatureSleepQuality, patient.FeatureAppetite, patient.FeatureMood,
		patient.FeatureFunctionalIndependence:
		return math.Min(math.Max(x, 0), 10)
	case patient.FeatureOxygenSaturation:
		return math.Min(x, 100)
	default:
		return math.Max(x, 0)
	}
}
