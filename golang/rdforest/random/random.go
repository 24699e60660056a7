//Package random is a seedable source of the random draws used for feature sampling.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

//Generator produces uniform, normal and Bernoulli draws from one PCG stream.
//A Generator is not safe for concurrent use; every tree trainer owns its own.
type Generator struct {
	rng *rand.Rand
}

//New creates a generator with a fixed seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

//NewFromEntropy creates a generator seeded from the operating system.
func NewFromEntropy() *Generator {
	return New(EntropySeed())
}

//EntropySeed reads a seed from crypto/rand, falling back to the clock.
func EntropySeed() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

//Seed reinitializes the generator from external entropy.
func (g *Generator) Seed() {
	g.rng.Seed(EntropySeed())
}

//SeedWith reinitializes the generator with a fixed seed.
func (g *Generator) SeedWith(seed uint64) {
	g.rng.Seed(seed)
}

//Uint64 returns a raw 64-bit draw. It is used to derive seeds of child generators.
func (g *Generator) Uint64() uint64 {
	return g.rng.Uint64()
}

//Int returns a uniform integer in the closed interval [min, max].
func (g *Generator) Int(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}

//Float returns a uniform float in [min, max).
func (g *Generator) Float(min, max float64) float64 {
	if max <= min {
		return min
	}
	return distuv.Uniform{Min: min, Max: max, Src: g.rng}.Rand()
}

//Normal returns a normally distributed float.
func (g *Generator) Normal(mean, std float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: std, Src: g.rng}.Rand()
}

//Bool returns true with probability p.
func (g *Generator) Bool(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return distuv.Bernoulli{P: p, Src: g.rng}.Rand() == 1
}
