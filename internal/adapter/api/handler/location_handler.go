package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"civicvoice/internal/domain/service"
	"civicvoice/pkg/errors"
	"civicvoice/pkg/response"
)

type LocationHandler struct {
	pincodes service.PincodeResolver
}

func NewLocationHandler(pincodes service.PincodeResolver) *LocationHandler {
	return &LocationHandler{
		pincodes: pincodes,
	}
}

type pincodeParam struct {
	Pincode string `param:"pincode" validate:"required,len=6,numeric"`
}

// LookupPincode resolves city and state for the grievance form.
func (h *LocationHandler) LookupPincode(c echo.Context) error {
	req := pincodeParam{Pincode: c.Param("pincode")}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	loc, err := h.pincodes.Lookup(c.Request().Context(), req.Pincode)
	if err != nil {
		return response.Error(c, errors.Unavailable("Error fetching location", err))
	}
	if !loc.Resolved() {
		return response.Error(c, errors.New("PINCODE_UNRESOLVED", "Invalid Pincode", http.StatusNotFound, nil))
	}

	return response.Success(c, loc)
}
