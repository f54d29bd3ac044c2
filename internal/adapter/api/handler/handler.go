package handler

import (
	"civicvoice/internal/domain/service"
	ws "civicvoice/internal/infrastructure/websocket"
	"civicvoice/internal/usecase"
)

var (
	authHandler      *AuthHandler
	userHandler      *UserHandler
	locationHandler  *LocationHandler
	grievanceHandler *GrievanceHandler
	adminHandler     *AdminHandler
	socialHandler    *SocialHandler
	websocketHandler *WebSocketHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	grievanceUseCase *usecase.GrievanceUseCase,
	adminUseCase *usecase.AdminUseCase,
	communityUseCase *usecase.CommunityUseCase,
	pincodes service.PincodeResolver,
	wsManager *ws.Manager,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(authUseCase)
	locationHandler = NewLocationHandler(pincodes)
	grievanceHandler = NewGrievanceHandler(grievanceUseCase)
	adminHandler = NewAdminHandler(adminUseCase, communityUseCase)
	socialHandler = NewSocialHandler(communityUseCase)
	websocketHandler = NewWebSocketHandler(wsManager, grievanceUseCase, adminUseCase, communityUseCase)
	healthHandler = NewHealthHandler(authUseCase, wsManager)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetLocationHandler() *LocationHandler {
	return locationHandler
}

func GetGrievanceHandler() *GrievanceHandler {
	return grievanceHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func GetSocialHandler() *SocialHandler {
	return socialHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return websocketHandler
}
