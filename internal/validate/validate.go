// Package validate checks product payloads before they reach the store.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fairyhunter13/product-catalog-manager/internal/model"
)

// Payload field names.
const (
	FieldProductNumber = "productNumber"
	FieldProductName   = "productName"
	FieldProductOwner  = "productOwner"
	FieldDevelopers    = "developers"
	FieldScrumMaster   = "scrumMaster"
	FieldStartDate     = "startDate"
	FieldMethodology   = "methodology"
)

var knownFields = map[string]bool{
	FieldProductNumber: true,
	FieldProductName:   true,
	FieldProductOwner:  true,
	FieldDevelopers:    true,
	FieldScrumMaster:   true,
	FieldStartDate:     true,
	FieldMethodology:   true,
}

// Violation is a single failed rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string { return v.Message }

// Violations is the ordered list of failed rules of one payload.
type Violations []Violation

func (vs Violations) Error() string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}

// Options configures a Validator.
type Options struct {
	// RequireStartDate makes startDate mandatory.
	RequireStartDate bool
}

// Validator checks decoded JSON payloads. It holds no state besides its
// options and is safe for concurrent use.
type Validator struct {
	opts Options
}

// New returns a Validator with the given options.
func New(opts Options) *Validator {
	return &Validator{opts: opts}
}

type checker struct {
	payload map[string]any
	out     Violations
}

func (c *checker) fail(field, format string, args ...any) {
	c.out = append(c.out, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) str(field string) string {
	raw, ok := c.payload[field]
	if !ok || raw == nil {
		c.fail(field, "%q is required", field)
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		c.fail(field, "%q must be a string", field)
		return ""
	}
	if s == "" {
		c.fail(field, "%q is not allowed to be empty", field)
	}
	return s
}

func (c *checker) developers() []string {
	raw, ok := c.payload[FieldDevelopers]
	if !ok || raw == nil {
		c.fail(FieldDevelopers, "%q is required", FieldDevelopers)
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		c.fail(FieldDevelopers, "%q must be an array", FieldDevelopers)
		return nil
	}
	if len(items) == 0 {
		c.fail(FieldDevelopers, "%q must contain at least 1 items", FieldDevelopers)
	}
	if len(items) > model.MaxDevelopers {
		c.fail(FieldDevelopers, "%q must contain less than or equal to %d items", FieldDevelopers, model.MaxDevelopers)
	}
	devs := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		name := fmt.Sprintf("%s[%d]", FieldDevelopers, i)
		s, ok := it.(string)
		switch {
		case !ok:
			c.fail(FieldDevelopers, "%q must be a string", name)
			continue
		case s == "":
			c.fail(FieldDevelopers, "%q is not allowed to be empty", name)
			continue
		case seen[s]:
			c.fail(FieldDevelopers, "%q contains a duplicate value", name)
			continue
		}
		seen[s] = true
		devs = append(devs, s)
	}
	return devs
}

func (c *checker) methodology() model.Methodology {
	raw, ok := c.payload[FieldMethodology]
	if !ok || raw == nil {
		c.fail(FieldMethodology, "%q is required", FieldMethodology)
		return ""
	}
	s, _ := raw.(string)
	m := model.Methodology(s)
	if !m.Valid() {
		c.fail(FieldMethodology, "%q must be one of [%s, %s]", FieldMethodology, model.Agile, model.Waterfall)
	}
	return m
}

func (c *checker) startDate(required bool) model.Date {
	raw, ok := c.payload[FieldStartDate]
	if !ok || raw == nil {
		if required {
			c.fail(FieldStartDate, "%q is required", FieldStartDate)
		}
		return model.Date{}
	}
	var b []byte
	switch v := raw.(type) {
	case string:
		b, _ = json.Marshal(v)
	case json.Number:
		b = []byte(v.String())
	case float64:
		if n, ok := integral(v); ok {
			b = strconv.AppendInt(nil, n, 10)
		}
	}
	var d model.Date
	if b == nil || d.UnmarshalJSON(b) != nil {
		c.fail(FieldStartDate, "%q must be a valid date", FieldStartDate)
		return model.Date{}
	}
	return d
}

func (c *checker) productNumber() {
	raw, ok := c.payload[FieldProductNumber]
	if !ok || raw == nil {
		return
	}
	if _, ok := Number(raw); !ok {
		c.fail(FieldProductNumber, "%q must be an integer", FieldProductNumber)
	}
}

func (c *checker) unknown() {
	var extra []string
	for k := range c.payload {
		if !knownFields[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		c.fail(k, "%q is not allowed", k)
	}
}

// Validate checks payload and returns the product it describes, with a zero
// ProductNumber. Every violated rule is reported, in field order. The payload
// is not modified.
func (v *Validator) Validate(payload map[string]any) (model.Product, error) {
	c := &checker{payload: payload}
	c.productNumber()
	p := model.Product{
		ProductName:  c.str(FieldProductName),
		ProductOwner: c.str(FieldProductOwner),
		Developers:   c.developers(),
		ScrumMaster:  c.str(FieldScrumMaster),
		StartDate:    c.startDate(v.opts.RequireStartDate),
		Methodology:  c.methodology(),
	}
	c.unknown()
	if len(c.out) > 0 {
		return model.Product{}, c.out
	}
	return p, nil
}

// Number reads an integral JSON number from a decoded payload value.
func Number(raw any) (int, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case float64:
		n, ok := integral(v)
		return int(n), ok
	}
	return 0, false
}

// maxExact is the largest magnitude a float64 holds without losing integers.
const maxExact = 1 << 53

func integral(v float64) (int64, bool) {
	if v != math.Trunc(v) || math.Abs(v) > maxExact {
		return 0, false
	}
	return int64(v), true
}
