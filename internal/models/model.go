package models

import "time"

// Role classifies a user's access level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an auction participant with a funds balance
type User struct {
	UserID       string    `json:"user_id" gorm:"primaryKey;column:user_id"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null;default:user"`
	Balance      float64   `json:"balance" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product represents an auction listing. Immutable after creation;
// the current price is derived from the bid table, never stored.
type Product struct {
	ProductID   string    `json:"product_id" gorm:"primaryKey;column:product_id"`
	SellerID    string    `json:"seller_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	StartPrice  float64   `json:"start_price" gorm:"not null"`
	ImageURL    string    `json:"image_url"`
	EndsAt      time.Time `json:"ends_at" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// Bid represents a user's bid on a product. Append-only, never mutated.
type Bid struct {
	BidID     string    `json:"bid_id" gorm:"primaryKey;column:bid_id"`
	ProductID string    `json:"product_id" gorm:"index;not null"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Amount    float64   `json:"amount" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductDetail is a product together with its derived current price
type ProductDetail struct {
	Product
	CurrentPrice float64 `json:"current_price"`
}

// BidStatus tells whether a user's bid still leads its product
type BidStatus string

const (
	BidStatusWinning BidStatus = "WINNING"
	BidStatusOutbid  BidStatus = "OUTBID"
)

// PortfolioEntry is one row of a user's bid-portfolio view
type PortfolioEntry struct {
	ProductID     string    `json:"product_id"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	EndsAt        time.Time `json:"ends_at"`
	MyAmount      float64   `json:"my_amount"`
	HighestAmount float64   `json:"highest_amount"`
	Status        BidStatus `json:"status"`
}

// Stats holds the admin dashboard aggregates
type Stats struct {
	Users        int64   `json:"users"`
	Products     int64   `json:"products"`
	Bids         int64   `json:"bids"`
	TotalBalance float64 `json:"total_balance"`
}

// ProductSort names the supported listing orders
type ProductSort string

const (
	SortEndingSoon ProductSort = "ending_soon"
	SortNewest     ProductSort = "newest"
	SortPriceAsc   ProductSort = "price_asc"
	SortPriceDesc  ProductSort = "price_desc"
)

// ParseProductSort maps a query value to a ProductSort, defaulting to ending_soon
func ParseProductSort(s string) ProductSort {
	switch ProductSort(s) {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return ProductSort(s)
	default:
		return SortEndingSoon
	}
}
