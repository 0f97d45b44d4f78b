package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// SettlementTx is the write scope handed to a settlement callback. All reads
// and writes made through it are isolated from concurrent settlements on the
// same product and are applied atomically on commit.
type SettlementTx interface {
	Product(productID string) (model.Product, error)
	HighestBid(productID string) (model.Bid, error)
	Balance(userID string) (float64, error)
	Credit(userID string, amount float64) error
	Debit(userID string, amount float64) error
	InsertBid(bid model.Bid) error
}

// Ledger defines the durable storage interface for the auction system
type Ledger interface {
	CreateUser(user model.User) error
	GetUser(userID string) (model.User, error)
	GetUserByEmail(email string) (model.User, error)
	ListUsers() ([]model.User, error)
	Credit(userID string, amount float64) error

	CreateProduct(product model.Product) error
	GetProduct(productID string) (model.Product, error)
	ListProducts(query string, sortBy model.ProductSort) ([]model.Product, error)

	HighestBid(productID string) (model.Bid, error)
	BidsByUser(userID string) ([]model.Bid, error)

	// Settle runs fn inside a settlement scope for the given product.
	// At most one settlement per product is in flight at a time; settlements
	// on different products proceed independently. If fn returns an error
	// nothing is applied. A settlement whose debits would drive any balance
	// negative fails with ErrInsufficientFunds, even when a settlement on
	// another product spent the funds after fn's own checks.
	Settle(productID string, fn func(tx SettlementTx) error) error

	Stats() (model.Stats, error)
}

// keyedMutex hands out one mutex per key. Entries are never evicted; the
// key space is the product set, which is bounded by the catalog size.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	if m, ok := k.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	k.locks[key] = m
	return m
}

func (k *keyedMutex) Lock(key string)   { k.get(key).Lock() }
func (k *keyedMutex) Unlock(key string) { k.get(key).Unlock() }

// MemoryLedger is a concurrency-safe in-memory implementation of Ledger
type MemoryLedger struct {
	mu       sync.RWMutex
	users    map[string]model.User
	products map[string]model.Product
	bids     map[string][]model.Bid // key: productID -> value: bids in insertion order
	settles  *keyedMutex
}

// NewMemoryLedger creates a new in-memory ledger instance
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		users:    make(map[string]model.User),
		products: make(map[string]model.Product),
		bids:     make(map[string][]model.Bid),
		settles:  newKeyedMutex(),
	}
}

// CreateUser adds a user, enforcing email uniqueness
func (r *MemoryLedger) CreateUser(user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
		}
	}
	r.users[user.UserID] = user
	return nil
}

// GetUser returns a user by ID
func (r *MemoryLedger) GetUser(userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetUserByEmail returns a user by email address
func (r *MemoryLedger) GetUserByEmail(email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("get user by email %s: %w", email, auctionerrors.ErrUserNotFound)
}

// ListUsers returns all users, newest first
func (r *MemoryLedger) ListUsers() ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// Credit adds amount to a user's balance outside a settlement scope
func (r *MemoryLedger) Credit(userID string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("credit user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	user.Balance += amount
	r.users[userID] = user
	return nil
}

// CreateProduct adds a product listing
func (r *MemoryLedger) CreateProduct(product model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ProductID] = product
	return nil
}

// GetProduct returns a product by ID
func (r *MemoryLedger) GetProduct(productID string) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[productID]
	if !ok {
		return model.Product{}, fmt.Errorf("get product %s: %w", productID, auctionerrors.ErrProductNotFound)
	}
	return product, nil
}

// ListProducts returns products matching the query, in the requested order
func (r *MemoryLedger) ListProducts(query string, sortBy model.ProductSort) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	products := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if q == "" || strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q) {
			products = append(products, p)
		}
	}

	sort.Slice(products, func(i, j int) bool {
		switch sortBy {
		case model.SortNewest:
			return products[i].CreatedAt.After(products[j].CreatedAt)
		case model.SortPriceAsc:
			return products[i].StartPrice < products[j].StartPrice
		case model.SortPriceDesc:
			return products[i].StartPrice > products[j].StartPrice
		default: // ending_soon
			return products[i].EndsAt.Before(products[j].EndsAt)
		}
	})
	return products, nil
}

// HighestBid returns the leading bid for a product
func (r *MemoryLedger) HighestBid(productID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.highestBidLocked(productID)
}

func (r *MemoryLedger) highestBidLocked(productID string) (model.Bid, error) {
	bids, ok := r.bids[productID]
	if !ok || len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("highest bid for product %s: %w", productID, auctionerrors.ErrNoBids)
	}

	leading := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > leading.Amount {
			leading = b
		}
	}
	return leading, nil
}

// BidsByUser returns all bids a user has placed, newest first
func (r *MemoryLedger) BidsByUser(userID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bids []model.Bid
	for _, productBids := range r.bids {
		for _, b := range productBids {
			if b.UserID == userID {
				bids = append(bids, b)
			}
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].CreatedAt.After(bids[j].CreatedAt) })
	return bids, nil
}

// Settle runs fn against a staged view of the ledger and applies its writes
// only when fn succeeds. The per-product lock serializes settlements on the
// same product while leaving other products free to settle concurrently.
func (r *MemoryLedger) Settle(productID string, fn func(tx SettlementTx) error) error {
	r.settles.Lock(productID)
	defer r.settles.Unlock(productID)

	tx := &memSettlementTx{ledger: r, deltas: make(map[string]float64)}
	if err := fn(tx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The funds check inside fn read a balance that a settlement on another
	// product may have debited since. Re-validate against the live balances
	// before applying anything, so a balance can never go negative.
	for userID, delta := range tx.deltas {
		if r.users[userID].Balance+delta < 0 {
			return fmt.Errorf("settle product %s: debit of user %s: %w",
				productID, userID, auctionerrors.ErrInsufficientFunds)
		}
	}

	for userID, delta := range tx.deltas {
		user := r.users[userID]
		user.Balance += delta
		r.users[userID] = user
	}
	for _, bid := range tx.inserted {
		r.bids[bid.ProductID] = append(r.bids[bid.ProductID], bid)
	}
	return nil
}

// Stats returns the admin aggregates
func (r *MemoryLedger) Stats() (model.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := model.Stats{
		Users:    int64(len(r.users)),
		Products: int64(len(r.products)),
	}
	for _, u := range r.users {
		stats.TotalBalance += u.Balance
	}
	for _, bids := range r.bids {
		stats.Bids += int64(len(bids))
	}
	return stats, nil
}

// memSettlementTx stages balance deltas and bid inserts until commit
type memSettlementTx struct {
	ledger   *MemoryLedger
	deltas   map[string]float64
	inserted []model.Bid
}

func (t *memSettlementTx) Product(productID string) (model.Product, error) {
	return t.ledger.GetProduct(productID)
}

func (t *memSettlementTx) HighestBid(productID string) (model.Bid, error) {
	t.ledger.mu.RLock()
	defer t.ledger.mu.RUnlock()

	leading, err := t.ledger.highestBidLocked(productID)
	for _, b := range t.inserted {
		if b.ProductID == productID && (err != nil || b.Amount > leading.Amount) {
			leading, err = b, nil
		}
	}
	if err != nil {
		return model.Bid{}, err
	}
	return leading, nil
}

func (t *memSettlementTx) Balance(userID string) (float64, error) {
	user, err := t.ledger.GetUser(userID)
	if err != nil {
		return 0, err
	}
	return user.Balance + t.deltas[userID], nil
}

func (t *memSettlementTx) Credit(userID string, amount float64) error {
	if _, err := t.ledger.GetUser(userID); err != nil {
		return err
	}
	t.deltas[userID] += amount
	return nil
}

func (t *memSettlementTx) Debit(userID string, amount float64) error {
	if _, err := t.ledger.GetUser(userID); err != nil {
		return err
	}
	t.deltas[userID] -= amount
	return nil
}

func (t *memSettlementTx) InsertBid(bid model.Bid) error {
	if _, err := t.ledger.GetProduct(bid.ProductID); err != nil {
		return err
	}
	t.inserted = append(t.inserted, bid)
	return nil
}
