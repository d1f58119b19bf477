// Package catalog reads products, companies and sales channels from SQLite and
// hands them to the pricing engine as plain values.
package catalog

import (
	"errors"
)

// ErrNotFound is returned when a product, company or sales channel does not exist.
var ErrNotFound = errors.New("not found")

// HeadOfficeCompanyID owns the channels every company inherits.
const HeadOfficeCompanyID int64 = 1
