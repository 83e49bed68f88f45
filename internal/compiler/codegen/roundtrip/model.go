// Package roundtrip holds hand-written types together with the marshal code
// parcelgen prints for them. The code generator tests keep the printed file
// in step with the generator.
package roundtrip

// Status is an order state stored as its ordinal.
type Status int32

const (
	StatusDraft Status = iota
	StatusActive
	StatusArchived
)

// Customer is built through NewCustomer and exposes its name through an
// accessor only.
type Customer struct {
	name  string
	Email *string
}

func NewCustomer(name string) *Customer {
	return &Customer{name: name}
}

func (c *Customer) Name() string { return c.name }

type Order struct {
	Number   int64
	Paid     bool
	Total    float64
	Note     string
	Coupon   *string
	Lines    []int32
	Labels   map[string]int32
	Status   Status
	Customer *Customer
	secret   string
}

// WithSecret returns o with its unexported secret set.
func (o *Order) WithSecret(s string) *Order {
	o.secret = s
	return o
}

func (o *Order) Secret() string { return o.secret }
