package test

import (
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/onsi/ginkgo/v2"
)

// Fixtures share a single source seeded from the suite so failures
// reproduce with the reported seed.
var (
	Source = rand.NewSource(ginkgo.GinkgoRandomSeed())
	Rand   = rand.New(Source)
	Faker  = faker.NewWithSeed(Source)
)

// Pick returns a random element of choices.
func Pick[T any](choices []T) T {
	return choices[Rand.Intn(len(choices))]
}
