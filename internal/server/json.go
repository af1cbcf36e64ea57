package server

import (
	"sync"

	"github.com/shopspring/decimal"
)

var configureJSON sync.Once

// ConfigureJSON makes decimal amounts encode as JSON numbers
// ({"totalIncome":1500}) instead of strings. NewRouter calls it, so any
// process serving the API gets the same wire format.
func ConfigureJSON() {
	configureJSON.Do(func() {
		decimal.MarshalJSONWithoutQuotes = true
	})
}
