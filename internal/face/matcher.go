// Package face resolves a probe face descriptor to the best-matching
// employee and maintains each employee's adaptive descriptor set.
//
// Scores are a monotonic transform of Euclidean distance into [0,1]:
// identical descriptors score 1.0 and the score reaches 0 at twice the
// acceptance distance.
package face

import (
	"math"

	id "storeops/pkg/domain"
)

const (
	DefaultDescriptorLength = 128
	DefaultAcceptDistance   = 0.6
	DefaultMinConfidence    = 0.3
	DefaultLearnConfidence  = 0.7
	DefaultNoveltyDistance  = 0.3
	DefaultMaxDescriptors   = 5
)

// Descriptor is a face embedding vector.
type Descriptor []float64

// Profile is an employee's registered descriptors, oldest first.
type Profile struct {
	EmployeeID   id.EmployeeID
	EmployeeName string
	Descriptors  []Descriptor
}

// Match is the best candidate for a probe.
type Match struct {
	EmployeeID   id.EmployeeID `json:"employee_id"`
	EmployeeName string        `json:"employee_name"`
	Confidence   float64       `json:"confidence"`
	// Distance is the probe's distance to the nearest reference of this employee.
	Distance float64 `json:"-"`
	// References is the employee's descriptor set at match time.
	References []Descriptor `json:"-"`
}

// Matcher scores probes against profiles. It is stateless and safe for
// concurrent use.
type Matcher struct {
	descriptorLength int
	acceptDistance   float64
	minConfidence    float64
	learnConfidence  float64
	noveltyDistance  float64
	maxDescriptors   int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithAcceptDistance sets the largest distance that can still match.
func WithAcceptDistance(d float64) Option {
	return func(m *Matcher) { m.acceptDistance = d }
}

// WithMinConfidence sets the confidence floor applied by callers before
// accepting an identification.
func WithMinConfidence(c float64) Option {
	return func(m *Matcher) { m.minConfidence = c }
}

// WithLearning sets the adaptive learning thresholds.
func WithLearning(confidence, novelty float64) Option {
	return func(m *Matcher) {
		m.learnConfidence = confidence
		m.noveltyDistance = novelty
	}
}

// WithMaxDescriptors caps the descriptors kept per employee.
func WithMaxDescriptors(n int) Option {
	return func(m *Matcher) { m.maxDescriptors = n }
}

// WithDescriptorLength sets the required embedding length.
func WithDescriptorLength(n int) Option {
	return func(m *Matcher) { m.descriptorLength = n }
}

// NewMatcher returns a Matcher with the default thresholds.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		descriptorLength: DefaultDescriptorLength,
		acceptDistance:   DefaultAcceptDistance,
		minConfidence:    DefaultMinConfidence,
		learnConfidence:  DefaultLearnConfidence,
		noveltyDistance:  DefaultNoveltyDistance,
		maxDescriptors:   DefaultMaxDescriptors,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MinConfidence is the floor below which callers reject a match.
func (m *Matcher) MinConfidence() float64 { return m.minConfidence }

// MaxDescriptors is the per-employee descriptor cap.
func (m *Matcher) MaxDescriptors() int { return m.maxDescriptors }

// Validate reports whether d has the expected length and only finite values.
func (m *Matcher) Validate(d Descriptor) bool {
	if len(d) != m.descriptorLength {
		return false
	}
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Confidence maps a distance to a score in [0,1].
func (m *Matcher) Confidence(distance float64) float64 {
	scale := 2 * m.acceptDistance
	if scale <= 0 {
		return 0
	}
	c := 1 - distance/scale
	return math.Max(0, math.Min(1, c))
}

// BestMatch returns the profile nearest to probe. ok is false when no
// reference lies within the acceptance distance. References whose length
// differs from the probe are ignored. Ties keep the earlier profile.
func (m *Matcher) BestMatch(probe Descriptor, profiles []Profile) (Match, bool) {
	var (
		best  Match
		found bool
	)
	for _, p := range profiles {
		nearest, ok := NearestDistance(probe, p.Descriptors)
		if !ok || nearest > m.acceptDistance {
			continue
		}
		conf := m.Confidence(nearest)
		if found && conf <= best.Confidence {
			continue
		}
		best = Match{
			EmployeeID:   p.EmployeeID,
			EmployeeName: p.EmployeeName,
			Confidence:   conf,
			Distance:     nearest,
			References:   p.Descriptors,
		}
		found = true
	}
	return best, found
}

// ShouldLearn reports whether an accepted match is confident yet novel
// enough to be added to the employee's references.
func (m *Matcher) ShouldLearn(match Match) bool {
	return match.Confidence > m.learnConfidence && match.Distance > m.noveltyDistance
}

// Append adds probe to refs and evicts the oldest entries beyond limit.
// refs is not modified.
func Append(refs []Descriptor, probe Descriptor, limit int) []Descriptor {
	out := make([]Descriptor, 0, len(refs)+1)
	out = append(out, refs...)
	out = append(out, probe)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Distance is the Euclidean distance between a and b.
// ok is false when the lengths differ or either is empty.
func Distance(a, b Descriptor) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum), true
}

// NearestDistance is the minimum distance from probe to any comparable ref.
func NearestDistance(probe Descriptor, refs []Descriptor) (float64, bool) {
	nearest := math.Inf(1)
	found := false
	for _, ref := range refs {
		d, ok := Distance(probe, ref)
		if !ok {
			continue
		}
		if d < nearest {
			nearest = d
		}
		found = true
	}
	return nearest, found
}
