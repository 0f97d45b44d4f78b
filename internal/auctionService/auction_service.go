package auction

import (
	"errors"
	"fmt"
	"math"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
)

// AuctionService defines the business logic for the auction marketplace
type AuctionService struct {
	repo repository.Ledger
	now  func() time.Time
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.Ledger) *AuctionService {
	return &AuctionService{
		repo: repo,
		now:  time.Now,
	}
}

// PlaceBid settles a bid for a product: it validates timing, price ordering
// and funds, refunds the outbid leader, debits the bidder and records the
// bid, all inside a single settlement scope. On success it returns the new
// leading amount. Any failure leaves the ledger untouched.
func (s *AuctionService) PlaceBid(productID, bidderID string, amount float64) (float64, error) {
	if productID == "" || bidderID == "" {
		return 0, fmt.Errorf("service: %w - missing productID or bidderID", auctionerrors.ErrInvalidInput)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("service: %w - bid amount must be a finite positive number", auctionerrors.ErrInvalidInput)
	}

	err := s.repo.Settle(productID, func(tx repository.SettlementTx) error {
		product, err := tx.Product(productID)
		if err != nil {
			return fmt.Errorf("service: failed to load product %s: %w", productID, err)
		}

		// a bid exactly at endsAt is already too late
		if !s.now().Before(product.EndsAt) {
			return fmt.Errorf("service: %w - bidding on %s closed at %s",
				auctionerrors.ErrAuctionClosed, productID, product.EndsAt.UTC().Format(time.RFC3339))
		}

		currentPrice := product.StartPrice
		leading, err := tx.HighestBid(productID)
		hasLeader := err == nil
		if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
			return fmt.Errorf("service: failed to load leading bid for %s: %w", productID, err)
		}
		if hasLeader {
			currentPrice = leading.Amount
		}

		// equal amounts are rejected, keeping the bid sequence strictly increasing
		if amount <= currentPrice {
			return fmt.Errorf("service: %w - bid must be higher than %.2f", auctionerrors.ErrBidTooLow, currentPrice)
		}

		balance, err := tx.Balance(bidderID)
		if err != nil {
			return fmt.Errorf("service: failed to load balance of %s: %w", bidderID, err)
		}
		if balance < amount {
			return fmt.Errorf("service: %w - balance is %.2f, short %.2f",
				auctionerrors.ErrInsufficientFunds, balance, amount-balance)
		}

		// release the previous leader's escrowed funds before taking the new ones
		if hasLeader {
			if err := tx.Credit(leading.UserID, leading.Amount); err != nil {
				return fmt.Errorf("service: failed to refund outbid user %s: %w", leading.UserID, err)
			}
		}
		if err := tx.Debit(bidderID, amount); err != nil {
			return fmt.Errorf("service: failed to debit bidder %s: %w", bidderID, err)
		}

		bid := models.Bid{
			BidID:     utils.GenerateID(),
			ProductID: productID,
			UserID:    bidderID,
			Amount:    amount,
			CreatedAt: s.now().UTC(),
		}
		if err := tx.InsertBid(bid); err != nil {
			return fmt.Errorf("service: failed to record bid for %s: %w", productID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return amount, nil
}

// Deposit credits a user's balance. Amounts must be finite and positive;
// there is no upper bound.
func (s *AuctionService) Deposit(userID string, amount float64) error {
	if userID == "" {
		return fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidInput)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("service: %w", auctionerrors.ErrInvalidDeposit)
	}

	if err := s.repo.Credit(userID, amount); err != nil {
		return fmt.Errorf("service: failed to deposit %.2f for user %s: %w", amount, userID, err)
	}
	return nil
}

// Balance returns a user's current funds balance
func (s *AuctionService) Balance(userID string) (float64, error) {
	if userID == "" {
		return 0, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidInput)
	}

	user, err := s.repo.GetUser(userID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to get balance for user %s: %w", userID, err)
	}
	return user.Balance, nil
}
