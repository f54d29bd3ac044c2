package postal

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"

	"civicvoice/internal/domain/service"
)

var pincodePattern = regexp.MustCompile(`^\d{6}$`)

// PincodeClient resolves Indian postal codes through the public India Post
// API. District is used as the city.
type PincodeClient struct {
	rest *resty.Client
}

type postOffice struct {
	Name     string `json:"Name"`
	District string `json:"District"`
	State    string `json:"State"`
}

type lookupResult struct {
	Message    string       `json:"Message"`
	Status     string       `json:"Status"`
	PostOffice []postOffice `json:"PostOffice"`
}

func NewPincodeClient(baseURL string, timeout time.Duration) *PincodeClient {
	return &PincodeClient{
		rest: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *PincodeClient) Lookup(ctx context.Context, pincode string) (*service.Location, error) {
	loc := &service.Location{Pincode: pincode}
	if !pincodePattern.MatchString(pincode) {
		return loc, nil
	}

	var results []lookupResult
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("pincode", pincode).
		SetResult(&results).
		Get("/pincode/{pincode}")
	if err != nil {
		return nil, fmt.Errorf("pincode lookup failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pincode lookup returned status %d", resp.StatusCode())
	}

	if len(results) == 0 || results[0].Status != "Success" || len(results[0].PostOffice) == 0 {
		return loc, nil
	}

	office := results[0].PostOffice[0]
	loc.City = office.District
	loc.State = office.State
	loc.PostOffice = office.Name
	return loc, nil
}
