package server

import (
	handler "auction-house/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService handler.AuctionServiceInterface, authService handler.AuthServiceInterface, verifier TokenVerifier) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService)
	authHandler := handler.NewAuthHandler(authService)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.SignupHandler)
		authRoutes.POST("/login", authHandler.LoginHandler)
	}

	products := api.Group("/products")
	{
		products.GET("", auctionHandler.ListProductsHandler)
		products.GET("/:product_id", auctionHandler.GetProductHandler)
		products.POST("", AuthRequired(verifier), auctionHandler.CreateProductHandler)
	}

	api.POST("/bids", AuthRequired(verifier), auctionHandler.PlaceBidHandler)

	me := api.Group("/me", AuthRequired(verifier))
	{
		me.GET("/bids", auctionHandler.MyBidsHandler)
		me.GET("/balance", auctionHandler.BalanceHandler)
		me.POST("/deposit", auctionHandler.DepositHandler)
	}

	admin := api.Group("/admin", AuthRequired(verifier), AdminOnly)
	{
		admin.GET("/stats", auctionHandler.StatsHandler)
		admin.GET("/users", auctionHandler.ListUsersHandler)
	}

	return router
}
