// Package cluster fits a seeded one-dimensional k-means model over crime
// frequencies and maps the sorted centroids onto risk levels.
package cluster

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/area-risk/internal/model"
)

// Defaults used when Options fields are zero.
const (
	DefaultK       = 3
	DefaultSeed    = 42
	DefaultNInit   = 10
	DefaultMaxIter = 300
	DefaultTol     = 1e-4
)

// ErrNoSamples is returned when Fit receives no values.
var ErrNoSamples = eris.New("cluster: no samples to fit")

// Options configures Fit.
type Options struct {
	K       int     // number of clusters; only DefaultK is supported
	Seed    int64   // base seed; run i uses Seed+i
	NInit   int     // independent k-means++ restarts
	MaxIter int     // Lloyd iterations per restart
	Tol     float64 // stop when no centroid moves more than Tol
}

func (o Options) withDefaults() Options {
	if o.K == 0 {
		o.K = DefaultK
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.NInit <= 0 {
		o.NInit = DefaultNInit
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Tol <= 0 {
		o.Tol = DefaultTol
	}
	return o
}

// Fit clusters values into K groups. The same values and options always
// produce the same centroids.
func Fit(values []float64, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	if opts.K != DefaultK {
		return nil, eris.Errorf("cluster: k must be %d, got %d", DefaultK, opts.K)
	}
	if len(values) == 0 {
		return nil, ErrNoSamples
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, eris.Errorf("cluster: non-finite sample %v", v)
		}
	}

	var centroids []float64
	distinct := distinctSorted(values)
	if len(distinct) <= opts.K {
		centroids = padCentroids(distinct, opts.K)
		if len(distinct) < opts.K {
			zap.L().Warn("cluster: fewer distinct values than clusters",
				zap.Int("distinct", len(distinct)),
				zap.Int("k", opts.K),
			)
		}
	} else {
		bestInertia := math.Inf(1)
		for run := 0; run < opts.NInit; run++ {
			rng := rand.New(rand.NewSource(opts.Seed + int64(run)))
			c, inertia := lloyd(values, initPlusPlus(values, opts.K, rng), opts)
			if inertia < bestInertia {
				bestInertia = inertia
				centroids = c
			}
		}
	}

	sort.Float64s(centroids)
	m := &Model{
		Version:   SchemaVersion,
		ID:        uuid.New().String(),
		K:         opts.K,
		Seed:      opts.Seed,
		Centroids: centroids,
		Levels:    levelsFor(centroids),
		Samples:   len(values),
		FittedAt:  time.Now().UTC(),
	}
	m.Inertia = m.inertia(values)

	zap.L().Info("cluster: fitted model",
		zap.String("model_id", m.ID),
		zap.Float64s("centroids", m.Centroids),
		zap.Float64("inertia", m.Inertia),
		zap.Int("samples", m.Samples),
	)
	return m, nil
}

// initPlusPlus picks k starting centroids with k-means++ seeding.
func initPlusPlus(values []float64, k int, rng *rand.Rand) []float64 {
	centroids := make([]float64, 0, k)
	centroids = append(centroids, values[rng.Intn(len(values))])

	dist := make([]float64, len(values))
	for len(centroids) < k {
		var total float64
		for i, v := range values {
			d := nearestDistSq(v, centroids)
			dist[i] = d
			total += d
		}
		if total == 0 {
			// every sample sits on a centroid already
			centroids = append(centroids, centroids[len(centroids)-1])
			continue
		}

		target := rng.Float64() * total
		chosen := len(values) - 1
		var acc float64
		for i, d := range dist {
			acc += d
			if acc >= target && d > 0 {
				chosen = i
				break
			}
		}
		centroids = append(centroids, values[chosen])
	}
	return centroids
}

// lloyd runs assignment/update steps until convergence and returns the
// final centroids with their inertia.
func lloyd(values, centroids []float64, opts Options) ([]float64, float64) {
	k := len(centroids)
	sums := make([]float64, k)
	counts := make([]int, k)

	for iter := 0; iter < opts.MaxIter; iter++ {
		for j := range sums {
			sums[j], counts[j] = 0, 0
		}
		for _, v := range values {
			j := nearest(v, centroids)
			sums[j] += v
			counts[j]++
		}

		var shift float64
		for j := range centroids {
			if counts[j] == 0 {
				continue // empty cluster keeps its position
			}
			next := sums[j] / float64(counts[j])
			shift = math.Max(shift, math.Abs(next-centroids[j]))
			centroids[j] = next
		}
		if shift <= opts.Tol {
			break
		}
	}

	var inertia float64
	for _, v := range values {
		inertia += nearestDistSq(v, centroids)
	}
	return centroids, inertia
}

// nearest returns the index of the closest centroid; ties go to the lower index.
func nearest(v float64, centroids []float64) int {
	best := 0
	bestDist := math.Abs(v - centroids[0])
	for j := 1; j < len(centroids); j++ {
		if d := math.Abs(v - centroids[j]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func nearestDistSq(v float64, centroids []float64) float64 {
	d := v - centroids[nearest(v, centroids)]
	return d * d
}

func distinctSorted(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return append([]float64(nil), out...)
}

// padCentroids repeats the largest distinct value until there are k centroids.
func padCentroids(distinct []float64, k int) []float64 {
	c := append([]float64(nil), distinct...)
	for len(c) < k {
		c = append(c, c[len(c)-1])
	}
	return c
}

// levelsFor maps ascending centroids positionally onto risk levels. Equal
// centroids share the level of the lowest position they occupy.
func levelsFor(centroids []float64) []model.RiskLevel {
	levels := make([]model.RiskLevel, len(centroids))
	for i := range centroids {
		pos := i
		for pos > 0 && centroids[pos-1] == centroids[i] {
			pos--
		}
		levels[i] = model.RiskLevels[pos]
	}
	return levels
}
