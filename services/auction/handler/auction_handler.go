package handler

import (
	"fmt"
	"net/http"

	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	PlaceBid(productID, bidderID string, amount float64) (float64, error)
	Deposit(userID string, amount float64) error
	Balance(userID string) (float64, error)
	ListProducts(query, sortBy string) ([]model.Product, error)
	GetProduct(productID string) (model.ProductDetail, error)
	CreateProduct(sellerID, title, description string, startPrice float64, imageURL string, durationDays int) (model.Product, error)
	MyBids(userID string) ([]model.PortfolioEntry, error)
	Stats() (model.Stats, error)
	ListUsers() ([]model.User, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// PlaceBidHandler handles POST /api/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bidderID := c.GetString("user_id")
	newPrice, err := h.service.PlaceBid(req.ProductID, bidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to settle bid", map[string]any{
			"handler":    "PlaceBidHandler",
			"product_id": req.ProductID,
			"user_id":    bidderID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.BidResponse{ProductID: req.ProductID, NewPrice: newPrice}
	utils.JSONResponse(c, http.StatusOK, resp, "bid accepted")
	helpers.LogSuccess("PlaceBidHandler", "bid accepted", map[string]any{
		"product_id": req.ProductID,
		"user_id":    bidderID,
		"new_price":  newPrice,
	})
}

// ListProductsHandler handles GET /api/products
func (h *AuctionHandler) ListProductsHandler(c *gin.Context) {
	query := c.Query("q")
	sortBy := c.Query("sort")

	products, err := h.service.ListProducts(query, sortBy)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListProductsHandler: error listing products", map[string]any{"q": query, "sort": sortBy, "error": err.Error()})
		return
	}

	if products == nil {
		products = []model.Product{}
	}
	utils.JSONResponse(c, http.StatusOK, products, "products retrieved successfully")
}

// GetProductHandler handles GET /api/products/:product_id
func (h *AuctionHandler) GetProductHandler(c *gin.Context) {
	productID := c.Param("product_id")

	detail, err := h.service.GetProduct(productID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetProductHandler: error retrieving product", map[string]any{"product_id": productID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, detail, "product retrieved successfully")
}

// CreateProductHandler handles POST /api/products
func (h *AuctionHandler) CreateProductHandler(c *gin.Context) {
	var req helpers.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateProductHandler", err)
		return
	}

	sellerID := c.GetString("user_id")
	product, err := h.service.CreateProduct(sellerID, req.Title, req.Description, req.StartPrice, req.ImageURL, req.DurationDays)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateProductHandler: failed to create listing", map[string]any{
			"handler": "CreateProductHandler",
			"user_id": sellerID,
			"title":   req.Title,
			"error":   err.Error(),
		})
		return
	}

	resp := helpers.CreateProductResponse{ProductID: product.ProductID}
	utils.JSONResponse(c, http.StatusCreated, resp, "listing created successfully")
	helpers.LogSuccess("CreateProductHandler", "listing created successfully", map[string]any{
		"product_id": product.ProductID,
		"user_id":    sellerID,
		"ends_at":    product.EndsAt,
	})
}

// MyBidsHandler handles GET /api/me/bids
func (h *AuctionHandler) MyBidsHandler(c *gin.Context) {
	userID := c.GetString("user_id")

	entries, err := h.service.MyBids(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("MyBidsHandler: error retrieving portfolio", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	if entries == nil {
		entries = []model.PortfolioEntry{}
	}
	utils.JSONResponse(c, http.StatusOK, entries, "bids retrieved successfully")
}

// BalanceHandler handles GET /api/me/balance
func (h *AuctionHandler) BalanceHandler(c *gin.Context) {
	userID := c.GetString("user_id")

	balance, err := h.service.Balance(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("BalanceHandler: error reading balance", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.BalanceResponse{Balance: balance}, "balance retrieved successfully")
}

// DepositHandler handles POST /api/me/deposit
func (h *AuctionHandler) DepositHandler(c *gin.Context) {
	var req helpers.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "DepositHandler", err)
		return
	}

	userID := c.GetString("user_id")
	if err := h.service.Deposit(userID, req.Amount); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("DepositHandler: failed to deposit", map[string]any{
			"handler": "DepositHandler",
			"user_id": userID,
			"amount":  req.Amount,
			"error":   err.Error(),
		})
		return
	}

	balance, err := h.service.Balance(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.BalanceResponse{Balance: balance}, "deposit recorded successfully")
	helpers.LogSuccess("DepositHandler", "deposit recorded successfully", map[string]any{
		"user_id": userID,
		"amount":  req.Amount,
	})
}

// StatsHandler handles GET /api/admin/stats
func (h *AuctionHandler) StatsHandler(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("StatsHandler: error collecting stats", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, stats, "stats retrieved successfully")
}

// ListUsersHandler handles GET /api/admin/users
func (h *AuctionHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListUsersHandler: error listing users", map[string]any{"error": err.Error()})
		return
	}

	if users == nil {
		users = []model.User{}
	}
	utils.JSONResponse(c, http.StatusOK, users, "users retrieved successfully")
}
