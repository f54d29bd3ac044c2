package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"civicvoice/internal/usecase"
	"civicvoice/pkg/response"
	"civicvoice/pkg/utils"
)

type AdminHandler struct {
	adminUseCase     *usecase.AdminUseCase
	communityUseCase *usecase.CommunityUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase, communityUseCase *usecase.CommunityUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase:     adminUseCase,
		communityUseCase: communityUseCase,
	}
}

type insightsRequest struct {
	Municipality string `json:"municipality"`
}

func listInput(c echo.Context) usecase.AdminListInput {
	showVerified, _ := strconv.ParseBool(c.QueryParam("show_verified"))
	return usecase.AdminListInput{
		Municipality: c.QueryParam("municipality"),
		ShowVerified: showVerified,
	}
}

func (h *AdminHandler) ListGrievances(c echo.Context) error {
	grievances, err := h.adminUseCase.List(c.Request().Context(), listInput(c))
	if err != nil {
		return response.Error(c, err)
	}

	page := utils.GetPaginationParams(c)
	start, end := page.Window(len(grievances))
	return response.Paginated(c, grievances[start:end], int64(len(grievances)), page.Page, page.PageSize)
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminUseCase.Stats(c.Request().Context(), c.QueryParam("municipality"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, stats)
}

func (h *AdminHandler) Resolve(c echo.Context) error {
	result, err := h.adminUseCase.Resolve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *AdminHandler) Insights(c echo.Context) error {
	var req insightsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	text, err := h.adminUseCase.GenerateInsights(c.Request().Context(), req.Municipality)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"suggestions": text})
}

// RunTrending triggers the trending check outside the ticker.
func (h *AdminHandler) RunTrending(c echo.Context) error {
	report, err := h.communityUseCase.CheckTrending(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, report)
}
