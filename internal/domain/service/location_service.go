package service

import "context"

// Location is the postal lookup result for a pincode. City is the
// district reported by the postal service.
type Location struct {
	Pincode    string `json:"pincode"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostOffice string `json:"post_office,omitempty"`
}

func (l *Location) Resolved() bool {
	return l != nil && l.City != "" && l.State != ""
}

type PincodeResolver interface {
	// Lookup returns an unresolved (empty) Location for unknown pincodes and
	// an error only when the postal service itself failed.
	Lookup(ctx context.Context, pincode string) (*Location, error)
}
