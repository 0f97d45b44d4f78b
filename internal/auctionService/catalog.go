package auction

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/utils"
)

// ListProducts returns listings matching the query in the requested order
func (s *AuctionService) ListProducts(query, sortBy string) ([]models.Product, error) {
	products, err := s.repo.ListProducts(query, models.ParseProductSort(sortBy))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a product with its derived current price
func (s *AuctionService) GetProduct(productID string) (models.ProductDetail, error) {
	if productID == "" {
		return models.ProductDetail{}, fmt.Errorf("service: %w - empty product ID", auctionerrors.ErrInvalidInput)
	}

	product, err := s.repo.GetProduct(productID)
	if err != nil {
		return models.ProductDetail{}, fmt.Errorf("service: failed to get product %s: %w", productID, err)
	}

	detail := models.ProductDetail{Product: product, CurrentPrice: product.StartPrice}
	leading, err := s.repo.HighestBid(productID)
	if err == nil {
		detail.CurrentPrice = leading.Amount
	} else if !errors.Is(err, auctionerrors.ErrNoBids) {
		return models.ProductDetail{}, fmt.Errorf("service: failed to get leading bid for %s: %w", productID, err)
	}
	return detail, nil
}

// CreateProduct registers a new listing ending durationDays from now
func (s *AuctionService) CreateProduct(sellerID, title, description string, startPrice float64, imageURL string, durationDays int) (models.Product, error) {
	if sellerID == "" {
		return models.Product{}, fmt.Errorf("service: %w - empty seller ID", auctionerrors.ErrInvalidInput)
	}
	if strings.TrimSpace(title) == "" {
		return models.Product{}, fmt.Errorf("service: %w - title is required", auctionerrors.ErrInvalidInput)
	}
	if startPrice <= 0 || math.IsNaN(startPrice) || math.IsInf(startPrice, 0) {
		return models.Product{}, fmt.Errorf("service: %w - start price must be positive", auctionerrors.ErrInvalidInput)
	}
	if durationDays <= 0 {
		return models.Product{}, fmt.Errorf("service: %w - duration must be at least one day", auctionerrors.ErrInvalidInput)
	}

	now := s.now().UTC()
	product := models.Product{
		ProductID:   utils.GenerateID(),
		SellerID:    sellerID,
		Title:       strings.TrimSpace(title),
		Description: description,
		StartPrice:  startPrice,
		ImageURL:    imageURL,
		EndsAt:      now.Add(time.Duration(durationDays) * 24 * time.Hour),
		CreatedAt:   now,
	}

	if err := s.repo.CreateProduct(product); err != nil {
		return models.Product{}, fmt.Errorf("service: failed to create product: %w", err)
	}
	return product, nil
}

// MyBids returns a user's bid portfolio: each bid placed, the product it was
// placed on and whether it still leads.
func (s *AuctionService) MyBids(userID string) ([]models.PortfolioEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidInput)
	}

	bids, err := s.repo.BidsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for user %s: %w", userID, err)
	}

	entries := make([]models.PortfolioEntry, 0, len(bids))
	for _, bid := range bids {
		product, err := s.repo.GetProduct(bid.ProductID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to get product %s: %w", bid.ProductID, err)
		}

		highest := product.StartPrice
		if leading, err := s.repo.HighestBid(bid.ProductID); err == nil {
			highest = leading.Amount
		} else if !errors.Is(err, auctionerrors.ErrNoBids) {
			return nil, fmt.Errorf("service: failed to get leading bid for %s: %w", bid.ProductID, err)
		}

		// amounts are unique per product, so an equal amount is the user's own bid
		status := models.BidStatusOutbid
		if bid.Amount >= highest {
			status = models.BidStatusWinning
		}

		entries = append(entries, models.PortfolioEntry{
			ProductID:     product.ProductID,
			Title:         product.Title,
			ImageURL:      product.ImageURL,
			EndsAt:        product.EndsAt,
			MyAmount:      bid.Amount,
			HighestAmount: highest,
			Status:        status,
		})
	}
	return entries, nil
}

// Stats returns the admin dashboard aggregates
func (s *AuctionService) Stats() (models.Stats, error) {
	stats, err := s.repo.Stats()
	if err != nil {
		return models.Stats{}, fmt.Errorf("service: failed to collect stats: %w", err)
	}
	return stats, nil
}

// ListUsers returns all registered users, newest first
func (s *AuctionService) ListUsers() ([]models.User, error) {
	users, err := s.repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}
