package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/stretchr/testify/require"
)

// Helper to create a new User
func newUser(userID string, balance float64) model.User {
	return model.User{
		UserID:    userID,
		Name:      userID,
		Email:     userID + "@test.local",
		Role:      model.RoleUser,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
	}
}

// Helper to create a new Product
func newProduct(productID, title string, startPrice float64, endsIn time.Duration) model.Product {
	return model.Product{
		ProductID:   productID,
		SellerID:    "seller",
		Title:       title,
		Description: fmt.Sprintf("%s description", title),
		StartPrice:  startPrice,
		EndsAt:      time.Now().UTC().Add(endsIn),
		CreatedAt:   time.Now().UTC(),
	}
}

// Helper to create a new Bid
func newBid(bidID, productID, userID string, amount float64, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		ProductID: productID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: createdAt,
	}
}

// Test user CRUD
func TestMemoryLedger_Users(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	require.NoError(t, ledger.CreateUser(newUser("user1", 100)))

	t.Run("duplicate_email_rejected", func(t *testing.T) {
		dup := newUser("user2", 0)
		dup.Email = "user1@test.local"
		err := ledger.CreateUser(dup)
		require.ErrorIs(t, err, auctionerrors.ErrEmailTaken)
	})

	t.Run("get_by_id", func(t *testing.T) {
		user, err := ledger.GetUser("user1")
		require.NoError(t, err)
		require.Equal(t, 100.0, user.Balance)

		_, err = ledger.GetUser("ghost")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})

	t.Run("get_by_email", func(t *testing.T) {
		user, err := ledger.GetUserByEmail("user1@test.local")
		require.NoError(t, err)
		require.Equal(t, "user1", user.UserID)

		_, err = ledger.GetUserByEmail("nobody@test.local")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})

	t.Run("credit", func(t *testing.T) {
		require.NoError(t, ledger.Credit("user1", 50))
		user, err := ledger.GetUser("user1")
		require.NoError(t, err)
		require.Equal(t, 150.0, user.Balance)

		require.ErrorIs(t, ledger.Credit("ghost", 50), auctionerrors.ErrUserNotFound)
	})
}

// Test ListProducts filtering and ordering
func TestMemoryLedger_ListProducts(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()

	watch := newProduct("prod1", "Vintage Watch", 500, time.Hour)
	watch.CreatedAt = time.Now().UTC().Add(-3 * time.Hour)
	guitar := newProduct("prod2", "Electric Guitar", 200, 30*time.Minute)
	guitar.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	camera := newProduct("prod3", "Film Camera", 800, 2*time.Hour)
	camera.Description = "vintage rangefinder"
	camera.CreatedAt = time.Now().UTC().Add(-1 * time.Hour)

	for _, p := range []model.Product{watch, guitar, camera} {
		require.NoError(t, ledger.CreateProduct(p))
	}

	tests := []struct {
		name     string
		query    string
		sortBy   model.ProductSort
		wantIDs  []string
	}{
		{name: "default_ending_soon", sortBy: model.SortEndingSoon, wantIDs: []string{"prod2", "prod1", "prod3"}},
		{name: "newest_first", sortBy: model.SortNewest, wantIDs: []string{"prod3", "prod2", "prod1"}},
		{name: "price_ascending", sortBy: model.SortPriceAsc, wantIDs: []string{"prod2", "prod1", "prod3"}},
		{name: "price_descending", sortBy: model.SortPriceDesc, wantIDs: []string{"prod3", "prod1", "prod2"}},
		{name: "query_matches_title", query: "guitar", sortBy: model.SortEndingSoon, wantIDs: []string{"prod2"}},
		{name: "query_matches_description", query: "rangefinder", sortBy: model.SortEndingSoon, wantIDs: []string{"prod3"}},
		{name: "query_no_match", query: "submarine", sortBy: model.SortEndingSoon, wantIDs: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			products, err := ledger.ListProducts(tc.query, tc.sortBy)
			require.NoError(t, err)

			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ProductID)
			}
			require.Equal(t, tc.wantIDs, ids)
		})
	}
}

// Test HighestBid and BidsByUser over settled bids
func TestMemoryLedger_Bids(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	require.NoError(t, ledger.CreateUser(newUser("user1", 1000)))
	require.NoError(t, ledger.CreateUser(newUser("user2", 1000)))
	require.NoError(t, ledger.CreateProduct(newProduct("prod1", "Lot 1", 50, time.Hour)))

	_, err := ledger.HighestBid("prod1")
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)

	settleBid := func(bid model.Bid) error {
		return ledger.Settle(bid.ProductID, func(tx SettlementTx) error {
			return tx.InsertBid(bid)
		})
	}
	now := time.Now().UTC()
	require.NoError(t, settleBid(newBid("bid1", "prod1", "user1", 100, now)))
	require.NoError(t, settleBid(newBid("bid2", "prod1", "user2", 150, now.Add(time.Second))))

	leading, err := ledger.HighestBid("prod1")
	require.NoError(t, err)
	require.Equal(t, "bid2", leading.BidID)

	bids, err := ledger.BidsByUser("user1")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, "bid1", bids[0].BidID)

	bids, err = ledger.BidsByUser("nobody")
	require.NoError(t, err)
	require.Empty(t, bids)
}

// Test that a failed settlement callback leaves no trace
func TestMemoryLedger_SettleRollsBackOnError(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	require.NoError(t, ledger.CreateUser(newUser("user1", 500)))
	require.NoError(t, ledger.CreateProduct(newProduct("prod1", "Lot 1", 50, time.Hour)))

	boom := errors.New("validation failed late")
	err := ledger.Settle("prod1", func(tx SettlementTx) error {
		require.NoError(t, tx.Debit("user1", 200))
		require.NoError(t, tx.InsertBid(newBid("bid1", "prod1", "user1", 200, time.Now().UTC())))
		return boom
	})
	require.ErrorIs(t, err, boom)

	user, err := ledger.GetUser("user1")
	require.NoError(t, err)
	require.Equal(t, 500.0, user.Balance)

	_, err = ledger.HighestBid("prod1")
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)
}

// Test that staged writes are visible inside the settlement scope
func TestMemoryLedger_SettleReadsOwnWrites(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	require.NoError(t, ledger.CreateUser(newUser("user1", 500)))
	require.NoError(t, ledger.CreateProduct(newProduct("prod1", "Lot 1", 50, time.Hour)))

	err := ledger.Settle("prod1", func(tx SettlementTx) error {
		require.NoError(t, tx.Debit("user1", 200))
		balance, err := tx.Balance("user1")
		require.NoError(t, err)
		require.Equal(t, 300.0, balance)

		require.NoError(t, tx.InsertBid(newBid("bid1", "prod1", "user1", 200, time.Now().UTC())))
		leading, err := tx.HighestBid("prod1")
		require.NoError(t, err)
		require.Equal(t, 200.0, leading.Amount)
		return nil
	})
	require.NoError(t, err)

	user, err := ledger.GetUser("user1")
	require.NoError(t, err)
	require.Equal(t, 300.0, user.Balance)
}

// Test settlement tx failures for unknown rows
func TestMemoryLedger_SettleUnknownRows(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	require.NoError(t, ledger.CreateProduct(newProduct("prod1", "Lot 1", 50, time.Hour)))

	err := ledger.Settle("prod1", func(tx SettlementTx) error {
		_, err := tx.Product("ghost")
		require.ErrorIs(t, err, auctionerrors.ErrProductNotFound)

		_, err = tx.Balance("ghost")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)

		require.ErrorIs(t, tx.Credit("ghost", 10), auctionerrors.ErrUserNotFound)
		require.ErrorIs(t, tx.Debit("ghost", 10), auctionerrors.ErrUserNotFound)
		require.ErrorIs(t, tx.InsertBid(newBid("bid1", "ghost", "user1", 10, time.Now().UTC())), auctionerrors.ErrProductNotFound)
		return nil
	})
	require.NoError(t, err)
}

// Test that a settlement cannot spend funds another product's settlement
// already took. Serialization is per product, so the funds check and the
// commit are separated by a window another settlement can use.
func TestMemoryLedger_SettleGuardsCrossProductDebits(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	require.NoError(t, ledger.CreateUser(newUser("alice", 100)))
	require.NoError(t, ledger.CreateProduct(newProduct("prodA", "Lot A", 50, time.Hour)))
	require.NoError(t, ledger.CreateProduct(newProduct("prodB", "Lot B", 50, time.Hour)))

	checked := make(chan struct{})
	committed := make(chan struct{})
	errA := make(chan error, 1)

	// prodA's settlement passes its funds check, then stalls until prodB's
	// settlement has spent the same funds.
	go func() {
		errA <- ledger.Settle("prodA", func(tx SettlementTx) error {
			balance, err := tx.Balance("alice")
			if err != nil {
				return err
			}
			if balance < 100 {
				return auctionerrors.ErrInsufficientFunds
			}
			close(checked)
			<-committed

			if err := tx.Debit("alice", 100); err != nil {
				return err
			}
			return tx.InsertBid(newBid("bidA", "prodA", "alice", 100, time.Now().UTC()))
		})
	}()

	<-checked
	require.NoError(t, ledger.Settle("prodB", func(tx SettlementTx) error {
		if err := tx.Debit("alice", 100); err != nil {
			return err
		}
		return tx.InsertBid(newBid("bidB", "prodB", "alice", 100, time.Now().UTC()))
	}))
	close(committed)

	require.ErrorIs(t, <-errA, auctionerrors.ErrInsufficientFunds)

	alice, err := ledger.GetUser("alice")
	require.NoError(t, err)
	require.Equal(t, 0.0, alice.Balance)

	// only prodB's bid landed
	_, err = ledger.HighestBid("prodA")
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)
	leading, err := ledger.HighestBid("prodB")
	require.NoError(t, err)
	require.Equal(t, "bidB", leading.BidID)
}

// Test Stats aggregates
func TestMemoryLedger_Stats(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	require.NoError(t, ledger.CreateUser(newUser("user1", 100)))
	require.NoError(t, ledger.CreateUser(newUser("user2", 250)))
	require.NoError(t, ledger.CreateProduct(newProduct("prod1", "Lot 1", 50, time.Hour)))

	require.NoError(t, ledger.Settle("prod1", func(tx SettlementTx) error {
		return tx.InsertBid(newBid("bid1", "prod1", "user1", 60, time.Now().UTC()))
	}))

	stats, err := ledger.Stats()
	require.NoError(t, err)
	require.Equal(t, model.Stats{Users: 2, Products: 1, Bids: 1, TotalBalance: 350}, stats)
}

// Test that concurrent settlements on the same key serialize
func TestKeyedMutex_Serializes(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	const workers = 50

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("prod1")
			defer km.Unlock("prod1")
			counter++ // data race here would trip -race
		}()
	}
	wg.Wait()
	require.Equal(t, workers, counter)
}
