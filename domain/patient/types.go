package patient

import (
	"fmt"
	"math"

	"recoverypilot/domain/core"
)

// FeatureCount is the dimensionality of every feature vector.
const FeatureCount = 21

// Feature names in canonical order. Values and FromValues are the only
// places that rely on positions; everything else goes through field names.
const (
	FeatureAge                    = "age"
	FeatureBMI                    = "bmi"
	FeatureComorbidityCount       = "comorbidity_count"
	FeatureHeartRate              = "heart_rate"
	FeatureSystolicBP             = "systolic_bp"
	FeatureOxygenSaturation       = "oxygen_saturation"
	FeatureTemperature            = "temperature"
	FeatureHemoglobin             = "hemoglobin"
	FeatureWhiteCellCount         = "white_cell_count"
	FeatureCreatinine             = "creatinine"
	FeatureAlbumin                = "albumin"
	FeaturePainLevel              = "pain_level"
	FeatureMobilityScore          = "mobility_score"
	FeatureWoundHealing           = "wound_healing"
	FeatureMedicationAdherence    = "medication_adherence"
	FeatureDaysSinceSurgery       = "days_since_surgery"
	FeatureExerciseCompletion     = "exercise_completion"
	FeatureSleepQuality           = "sleep_quality"
	FeatureAppetite               = "appetite"
	FeatureMood                   = "mood"
	FeatureFunctionalIndependence = "functional_independence"
)

// FeatureNames lists every feature in canonical order.
var FeatureNames = [FeatureCount]string{
	FeatureAge,
	FeatureBMI,
	FeatureComorbidityCount,
	FeatureHeartRate,
	FeatureSystolicBP,
	FeatureOxygenSaturation,
	FeatureTemperature,
	FeatureHemoglobin,
	FeatureWhiteCellCount,
	FeatureCreatinine,
	FeatureAlbumin,
	FeaturePainLevel,
	FeatureMobilityScore,
	FeatureWoundHealing,
	FeatureMedicationAdherence,
	FeatureDaysSinceSurgery,
	FeatureExerciseCompletion,
	FeatureSleepQuality,
	FeatureAppetite,
	FeatureMood,
	FeatureFunctionalIndependence,
}

// FeatureVector is the canonical per-patient record used for clustering.
type FeatureVector struct {
	ID core.PatientID `json:"id"`

	// Demographics
	Age              float64 `json:"age"`
	BMI              float64 `json:"bmi"`
	ComorbidityCount float64 `json:"comorbidity_count"`

	// Vitals
	HeartRate        float64 `json:"heart_rate"`
	SystolicBP       float64 `json:"systolic_bp"`
	OxygenSaturation float64 `json:"oxygen_saturation"`
	Temperature      float64 `json:"temperature"`

	// Labs
	Hemoglobin     float64 `json:"hemoglobin"`
	WhiteCellCount float64 `json:"white_cell_count"`
	Creatinine     float64 `json:"creatinine"`
	Albumin        float64 `json:"albumin"`

	// Recovery metrics
	PainLevel              float64 `json:"pain_level"`              // 0-10
	MobilityScore          float64 `json:"mobility_score"`          // 0-10
	WoundHealing           float64 `json:"wound_healing"`           // 0-10
	MedicationAdherence    float64 `json:"medication_adherence"`    // 0-1
	DaysSinceSurgery       float64 `json:"days_since_surgery"`      // days
	ExerciseCompletion     float64 `json:"exercise_completion"`     // 0-1
	SleepQuality           float64 `json:"sleep_quality"`           // 0-10
	Appetite               float64 `json:"appetite"`                // 0-10
	Mood                   float64 `json:"mood"`                    // 0-10
	FunctionalIndependence float64 `json:"functional_independence"` // 0-10
}

// Values returns the features in canonical order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.Age,
		v.BMI,
		v.ComorbidityCount,
		v.HeartRate,
		v.SystolicBP,
		v.OxygenSaturation,
		v.Temperature,
		v.Hemoglobin,
		v.WhiteCellCount,
		v.Creatinine,
		v.Albumin,
		v.PainLevel,
		v.MobilityScore,
		v.WoundHealing,
		v.MedicationAdherence,
		v.DaysSinceSurgery,
		v.ExerciseCompletion,
		v.SleepQuality,
		v.Appetite,
		v.Mood,
		v.FunctionalIndependence,
	}
}

// FromValues builds a FeatureVector from values in canonical order.
func FromValues(id core.PatientID, values []float64) (FeatureVector, error) {
	if len(values) != FeatureCount {
		return FeatureVector{}, fmt.Errorf("%w: expected %d feature values, got %d", core.ErrInvalidInput, FeatureCount, len(values))
	}
	return FeatureVector{
		ID:                     id,
		Age:                    values[0],
		BMI:                    values[1],
		ComorbidityCount:       values[2],
		HeartRate:              values[3],
		SystolicBP:             values[4],
		OxygenSaturation:       values[5],
		Temperature:            values[6],
		Hemoglobin:             values[7],
		WhiteCellCount:         values[8],
		Creatinine:             values[9],
		Albumin:                values[10],
		PainLevel:              values[11],
		MobilityScore:          values[12],
		WoundHealing:           values[13],
		MedicationAdherence:    values[14],
		DaysSinceSurgery:       values[15],
		ExerciseCompletion:     values[16],
		SleepQuality:           values[17],
		Appetite:               values[18],
		Mood:                   values[19],
		FunctionalIndependence: values[20],
	}, nil
}

// ValuesOf flattens a population into a row-per-patient matrix.
func ValuesOf(vectors []FeatureVector) [][]float64 {
	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		rows[i] = v.Values()
	}
	return rows
}

// FeatureMap returns the features keyed by name.
func (v FeatureVector) FeatureMap() map[string]float64 {
	values := v.Values()
	m := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		m[name] = values[i]
	}
	return m
}

type bound struct {
	min, max float64
}

var bounds = map[string]bound{
	FeatureAge:                    {0, 130},
	FeatureBMI:                    {0, 100},
	FeatureComorbidityCount:       {0, 50},
	FeaturePainLevel:              {0, 10},
	FeatureMobilityScore:          {0, 10},
	FeatureWoundHealing:           {0, 10},
	FeatureMedicationAdherence:    {0, 1},
	FeatureDaysSinceSurgery:       {0, math.Inf(1)},
	FeatureExerciseCompletion:     {0, 1},
	FeatureSleepQuality:           {0, 10},
	FeatureAppetite:               {0, 10},
	FeatureMood:                   {0, 10},
	FeatureFunctionalIndependence: {0, 10},
}

// Validate rejects non-finite values and bounded scores outside their scale.
// The ID is not checked; the engine assigns one when it is missing.
func (v FeatureVector) Validate() error {
	values := v.Values()
	for i, name := range FeatureNames {
		x := values[i]
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s is not a finite number", core.ErrInvalidInput, name)
		}
		if b, ok := bounds[name]; ok && (x < b.min || x > b.max) {
			return fmt.Errorf("%w: %s=%g outside [%g, %g]", core.ErrInvalidInput, name, x, b.min, b.max)
		}
	}
	return nil
}
