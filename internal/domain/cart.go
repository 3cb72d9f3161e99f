package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Amount is a monetary value kept verbatim as it arrived from the catalog
// or the stored cart. It accepts both JSON numbers and strings, so one
// malformed line item never aborts decoding of the whole cart. Validation
// happens when totals are computed.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*a = Amount(v)
		return nil
	}
	*a = Amount(s)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// Float parses the amount as a non-negative number.
func (a Amount) Float() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(a)), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

type CartItem struct {
	ProductID string `json:"id" bson:"product_id"`
	Title     string `json:"title" bson:"title"`
	Price     Amount `json:"price" bson:"price"`
	Quantity  int    `json:"qty" bson:"quantity"`
	Image     string `json:"image,omitempty" bson:"image,omitempty"`
}

// Cart is the ordered sequence of selected items. Insertion order is
// preserved; at most one entry exists per product id.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Add puts the product in the cart with quantity 1, or bumps the quantity
// of the existing entry for the same product id.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// SetQuantity updates the quantity of an existing entry. It reports
// whether the product was found.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Remove deletes the entry for the given product id. It reports whether
// the product was found.
func (c *Cart) Remove(productID string) bool {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Len() int {
	return len(c.Items)
}
