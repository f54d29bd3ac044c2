package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"civicvoice/internal/usecase"
	"civicvoice/pkg/response"
)

type SocialHandler struct {
	communityUseCase *usecase.CommunityUseCase
}

func NewSocialHandler(communityUseCase *usecase.CommunityUseCase) *SocialHandler {
	return &SocialHandler{
		communityUseCase: communityUseCase,
	}
}

func (h *SocialHandler) ListPosts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	posts, err := h.communityUseCase.ListFeed(c.Request().Context(), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, posts)
}
