package helpers

// Request/Response DTOs
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PlaceBidRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

type CreateProductRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	StartPrice   float64 `json:"start_price" binding:"required,gt=0"`
	ImageURL     string  `json:"image_url"`
	DurationDays int     `json:"duration_days" binding:"required,gt=0"`
}

type DepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type SignupResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type BidResponse struct {
	ProductID string  `json:"product_id"`
	NewPrice  float64 `json:"new_price"`
}

type CreateProductResponse struct {
	ProductID string `json:"product_id"`
}

type BalanceResponse struct {
	Balance float64 `json:"balance"`
}
