// Package model defines domain types used by the service.
package model

// Methodology is the project-process tag of a product.
type Methodology string

const (
	Agile     Methodology = "Agile"
	Waterfall Methodology = "Waterfall"
)

// Methodologies lists the accepted methodology values.
var Methodologies = []Methodology{Agile, Waterfall}

// Valid reports whether m is one of the accepted values.
func (m Methodology) Valid() bool {
	for _, v := range Methodologies {
		if m == v {
			return true
		}
	}
	return false
}

// MaxDevelopers bounds the developers list of a product.
const MaxDevelopers = 5

// Product represents a catalog entry.
type Product struct {
	ProductNumber int         `json:"productNumber"`
	ProductName   string      `json:"productName"`
	ProductOwner  string      `json:"productOwner"`
	Developers    []string    `json:"developers"`
	ScrumMaster   string      `json:"scrumMaster"`
	StartDate     Date        `json:"startDate"`
	Methodology   Methodology `json:"methodology"`
}

// Clone returns a copy of p that shares no slices with it.
func (p Product) Clone() Product {
	if p.Developers != nil {
		p.Developers = append([]string(nil), p.Developers...)
	}
	return p
}

// HasDeveloper reports whether name appears in the developers list.
func (p Product) HasDeveloper(name string) bool {
	for _, d := range p.Developers {
		if d == name {
			return true
		}
	}
	return false
}
