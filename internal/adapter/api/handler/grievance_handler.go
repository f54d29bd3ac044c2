package handler

import (
	"github.com/labstack/echo/v4"

	"civicvoice/internal/usecase"
	"civicvoice/pkg/response"
)

type GrievanceHandler struct {
	grievanceUseCase *usecase.GrievanceUseCase
}

func NewGrievanceHandler(grievanceUseCase *usecase.GrievanceUseCase) *GrievanceHandler {
	return &GrievanceHandler{
		grievanceUseCase: grievanceUseCase,
	}
}

// City and state are deliberately absent: they come from the pincode.
type submitGrievanceRequest struct {
	FullName     string `json:"full_name" validate:"required,max=100"`
	DoorNo       string `json:"door_no" validate:"required,max=50"`
	Area         string `json:"area" validate:"required,max=200"`
	Pincode      string `json:"pincode" validate:"required,len=6,numeric"`
	Municipality string `json:"municipality" validate:"required,max=100"`
	Category     string `json:"category" validate:"required,max=50"`
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required,max=5000"`
	Photo        string `json:"photo"`
}

func (h *GrievanceHandler) Submit(c echo.Context) error {
	var req submitGrievanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	email, _ := c.Get("email").(string)

	grievance, err := h.grievanceUseCase.Submit(c.Request().Context(), usecase.SubmitInput{
		UserID:       uid,
		UserEmail:    email,
		FullName:     req.FullName,
		DoorNo:       req.DoorNo,
		Area:         req.Area,
		Pincode:      req.Pincode,
		Municipality: req.Municipality,
		Category:     req.Category,
		Title:        req.Title,
		Description:  req.Description,
		Photo:        req.Photo,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, grievance)
}

func (h *GrievanceHandler) ListMine(c echo.Context) error {
	uid := c.Get("uid").(string)

	grievances, err := h.grievanceUseCase.ListMine(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, grievances)
}

func (h *GrievanceHandler) Verify(c echo.Context) error {
	uid := c.Get("uid").(string)

	result, err := h.grievanceUseCase.VerifyResolution(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *GrievanceHandler) Reopen(c echo.Context) error {
	uid := c.Get("uid").(string)

	grievance, err := h.grievanceUseCase.Reopen(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, grievance)
}
