package validate

import (
	"encoding/json"
	"fmt"

	"github.com/fairyhunter13/product-catalog-manager/internal/model"
)

// RecordError ties a problem to the stored product it was found on.
type RecordError struct {
	ProductNumber int
	Err           error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("product %d: %v", e.ProductNumber, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// CheckCollection runs every stored product through the payload rules and
// reports duplicate numbers and names.
func (v *Validator) CheckCollection(products []model.Product) []error {
	var errs []error
	numbers := make(map[int]bool, len(products))
	names := make(map[string]int, len(products))
	for _, p := range products {
		if numbers[p.ProductNumber] {
			errs = append(errs, &RecordError{p.ProductNumber, fmt.Errorf("duplicate productNumber")})
		}
		numbers[p.ProductNumber] = true
		if other, ok := names[p.ProductName]; ok {
			errs = append(errs, &RecordError{p.ProductNumber, fmt.Errorf("productName %q also used by product %d", p.ProductName, other)})
		} else {
			names[p.ProductName] = p.ProductNumber
		}

		b, err := json.Marshal(p)
		if err != nil {
			errs = append(errs, &RecordError{p.ProductNumber, err})
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal(b, &payload); err != nil {
			errs = append(errs, &RecordError{p.ProductNumber, err})
			continue
		}
		if _, err := v.Validate(payload); err != nil {
			errs = append(errs, &RecordError{p.ProductNumber, err})
		}
	}
	return errs
}
