package phenotype

// Phenotype labels a recovery trajectory learned from a cluster centroid.
type Phenotype string

const (
	FastRecoverer   Phenotype = "fast_recoverer"
	SteadyRecoverer Phenotype = "steady_recoverer"
	Struggling      Phenotype = "struggling"
	Complex         Phenotype = "complex"

	// Unassigned is the null state for callers that hold a phenotype before
	// any assignment exists. Interpret never returns it.
	Unassigned Phenotype = "unassigned"
)

// All lists the phenotypes Interpret can produce, in rule priority order.
var All = []Phenotype{FastRecoverer, SteadyRecoverer, Struggling, Complex}

var narratives = map[Phenotype]string{
	FastRecoverer: "Rapid functional return with well-controlled pain and strong adherence. " +
		"Expect early discharge milestones; step down monitoring frequency and focus on return-to-activity guidance.",
	SteadyRecoverer: "Gradual, predictable improvement across mobility and independence with moderate pain. " +
		"Maintain the standard recovery pathway with routine check-ins and progressive physiotherapy.",
	Struggling: "Low mobility and independence with persistent high pain. " +
		"At risk of readmission and prolonged recovery; escalate to close follow-up, pain review and intensive rehabilitation.",
	Complex: "Mixed recovery profile that does not follow a single trajectory, often driven by comorbidities or uneven progress. " +
		"Requires individualized, multidisciplinary review rather than a standard pathway.",
	Unassigned: "No phenotype has been assigned yet; run a clustering pass before interpreting this patient.",
}

// Narrative returns the fixed clinical narrative for p.
func Narrative(p Phenotype) string {
	if n, ok := narratives[p]; ok {
		return n
	}
	return narratives[Unassigned]
}

// Parse maps a label back to a Phenotype, falling back to Unassigned.
func Parse(s string) Phenotype {
	p := Phenotype(s)
	if _, ok := narratives[p]; ok {
		return p
	}
	return Unassigned
}

func (p Phenotype) String() string { return string(p) }
