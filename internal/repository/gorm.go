package repository

import (
	"errors"
	"fmt"
	"strings"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens a gorm connection for the configured driver.
// sqlite is the default; postgres is available for shared deployments.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "sqlite", "":
		if dsn == "" {
			dsn = "auction.sqlite"
		}
		return gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// GormLedger is the durable Ledger implementation backed by a relational
// database through gorm.
type GormLedger struct {
	db      *gorm.DB
	settles *keyedMutex
}

// NewGormLedger migrates the schema and returns a ready ledger
func NewGormLedger(db *gorm.DB) (*GormLedger, error) {
	if err := db.AutoMigrate(&model.User{}, &model.Product{}, &model.Bid{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &GormLedger{db: db, settles: newKeyedMutex()}, nil
}

func (r *GormLedger) CreateUser(user model.User) error {
	if err := r.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("create user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
		}
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (r *GormLedger) GetUser(userID string) (model.User, error) {
	var user model.User
	if err := r.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
		}
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

func (r *GormLedger) GetUserByEmail(email string) (model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, fmt.Errorf("get user by email %s: %w", email, auctionerrors.ErrUserNotFound)
		}
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, err)
	}
	return user, nil
}

func (r *GormLedger) ListUsers() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *GormLedger) Credit(userID string, amount float64) error {
	result := r.db.Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("credit user %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("credit user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return nil
}

func (r *GormLedger) CreateProduct(product model.Product) error {
	if err := r.db.Create(&product).Error; err != nil {
		return fmt.Errorf("create product %s: %w", product.ProductID, err)
	}
	return nil
}

func (r *GormLedger) GetProduct(productID string) (model.Product, error) {
	var product model.Product
	if err := r.db.Where("product_id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Product{}, fmt.Errorf("get product %s: %w", productID, auctionerrors.ErrProductNotFound)
		}
		return model.Product{}, fmt.Errorf("get product %s: %w", productID, err)
	}
	return product, nil
}

func (r *GormLedger) ListProducts(query string, sortBy model.ProductSort) ([]model.Product, error) {
	q := r.db.Model(&model.Product{})
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	// price sorts order by the start price, matching the listing view
	switch sortBy {
	case model.SortNewest:
		q = q.Order("created_at DESC")
	case model.SortPriceAsc:
		q = q.Order("start_price ASC")
	case model.SortPriceDesc:
		q = q.Order("start_price DESC")
	default:
		q = q.Order("ends_at ASC")
	}

	var products []model.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *GormLedger) HighestBid(productID string) (model.Bid, error) {
	return highestBid(r.db, productID)
}

func (r *GormLedger) BidsByUser(userID string) ([]model.Bid, error) {
	var bids []model.Bid
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("bids by user %s: %w", userID, err)
	}
	return bids, nil
}

// Settle wraps fn in a database transaction serialized per product. The keyed
// mutex guarantees at most one in-flight settlement per product in this
// process; the transaction guarantees the commit is all-or-nothing.
func (r *GormLedger) Settle(productID string, fn func(tx SettlementTx) error) error {
	r.settles.Lock(productID)
	defer r.settles.Unlock(productID)

	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormSettlementTx{db: tx})
	})
}

func (r *GormLedger) Stats() (model.Stats, error) {
	var stats model.Stats
	if err := r.db.Model(&model.User{}).Count(&stats.Users).Error; err != nil {
		return model.Stats{}, fmt.Errorf("stats: count users: %w", err)
	}
	if err := r.db.Model(&model.Product{}).Count(&stats.Products).Error; err != nil {
		return model.Stats{}, fmt.Errorf("stats: count products: %w", err)
	}
	if err := r.db.Model(&model.Bid{}).Count(&stats.Bids).Error; err != nil {
		return model.Stats{}, fmt.Errorf("stats: count bids: %w", err)
	}
	if err := r.db.Model(&model.User{}).Select("COALESCE(SUM(balance), 0)").Scan(&stats.TotalBalance).Error; err != nil {
		return model.Stats{}, fmt.Errorf("stats: sum balances: %w", err)
	}
	return stats, nil
}

// gormSettlementTx exposes the settlement scope over an open transaction
type gormSettlementTx struct {
	db *gorm.DB
}

func (t *gormSettlementTx) Product(productID string) (model.Product, error) {
	var product model.Product
	if err := t.db.Where("product_id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Product{}, fmt.Errorf("get product %s: %w", productID, auctionerrors.ErrProductNotFound)
		}
		return model.Product{}, fmt.Errorf("get product %s: %w", productID, err)
	}
	return product, nil
}

func (t *gormSettlementTx) HighestBid(productID string) (model.Bid, error) {
	return highestBid(t.db, productID)
}

func (t *gormSettlementTx) Balance(userID string) (float64, error) {
	var user model.User
	if err := t.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("balance of user %s: %w", userID, auctionerrors.ErrUserNotFound)
		}
		return 0, fmt.Errorf("balance of user %s: %w", userID, err)
	}
	return user.Balance, nil
}

func (t *gormSettlementTx) Credit(userID string, amount float64) error {
	return adjustBalance(t.db, userID, amount)
}

// Debit only succeeds if the row still holds enough funds at update time.
// A settlement on another product may have debited the same user after the
// caller's funds check, so the guard lives in the UPDATE itself.
func (t *gormSettlementTx) Debit(userID string, amount float64) error {
	result := t.db.Model(&model.User{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("debit user %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := t.db.Model(&model.User{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("debit user %s: %w", userID, err)
		}
		if count == 0 {
			return fmt.Errorf("debit user %s: %w", userID, auctionerrors.ErrUserNotFound)
		}
		return fmt.Errorf("debit user %s: %w", userID, auctionerrors.ErrInsufficientFunds)
	}
	return nil
}

func (t *gormSettlementTx) InsertBid(bid model.Bid) error {
	if err := t.db.Create(&bid).Error; err != nil {
		return fmt.Errorf("insert bid %s: %w", bid.BidID, err)
	}
	return nil
}

func adjustBalance(db *gorm.DB, userID string, delta float64) error {
	result := db.Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("adjust balance of user %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("adjust balance of user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return nil
}

func highestBid(db *gorm.DB, productID string) (model.Bid, error) {
	var bid model.Bid
	err := db.Where("product_id = ?", productID).Order("amount DESC").First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Bid{}, fmt.Errorf("highest bid for product %s: %w", productID, auctionerrors.ErrNoBids)
		}
		return model.Bid{}, fmt.Errorf("highest bid for product %s: %w", productID, err)
	}
	return bid, nil
}
