// Package seed generates sample product catalogs.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fairyhunter13/product-catalog-manager/internal/model"
)

// DefaultCount is the catalog size used when none is given.
const DefaultCount = 40

var (
	owners       = []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry", "Isabelle", "Jack"}
	developers   = []string{"Adam", "Beth", "Cathy", "Dan", "Emily", "Fred", "Gina", "Harry", "Ivy", "Jake", "Kelly", "Luke", "Megan", "Nate", "Olivia", "Peter", "Quinn", "Rachel", "Steve", "Tina"}
	scrumMasters = []string{"Amy", "Ben", "Chloe", "Derek", "Emma", "Fiona", "Glen", "Haley", "Ian", "Jenna"}
)

// Generate returns n products numbered 1..n named "Product i". The same seed
// always yields the same catalog; start dates fall within the year before
// now.
func Generate(n int, seed uint64, now time.Time) []model.Product {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]model.Product, 0, n)
	for i := 1; i <= n; i++ {
		devCount := r.IntN(model.MaxDevelopers) + 1
		devs := make([]string, 0, devCount)
		for _, j := range r.Perm(len(developers))[:devCount] {
			devs = append(devs, developers[j])
		}
		meth := model.Agile
		if r.Float64() >= 0.5 {
			meth = model.Waterfall
		}
		start := now.AddDate(0, 0, -r.IntN(365))
		out = append(out, model.Product{
			ProductNumber: i,
			ProductName:   fmt.Sprintf("Product %d", i),
			ProductOwner:  owners[r.IntN(len(owners))],
			Developers:    devs,
			ScrumMaster:   scrumMasters[r.IntN(len(scrumMasters))],
			StartDate:     model.Date{Time: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC), DateOnly: true},
			Methodology:   meth,
		})
	}
	return out
}
