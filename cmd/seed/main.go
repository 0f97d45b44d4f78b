// Command seed resets the demo catalog: it creates an admin account and a
// demo seller, then inserts a set of sample listings with staggered horizons.
package main

import (
	"time"

	"auction-house/internal/auth"
	"auction-house/internal/config"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
)

type seedProduct struct {
	title       string
	description string
	startPrice  float64
	imageURL    string
	endsIn      time.Duration
}

var catalog = []seedProduct{
	{
		title:       "Vintage Rolex Submariner (1972)",
		description: "A pristine condition diver's watch with original bezel and patina markers.",
		startPrice:  12500.00,
		imageURL:    "https://images.unsplash.com/photo-1523170335258-f5ed11844a49?auto=format&fit=crop&w=800&q=80",
		endsIn:      48 * time.Hour,
	},
	{
		title:       "1967 Shelby Cobra (Replica)",
		description: "Classic blue with white stripes. V8 engine, fully restored interior.",
		startPrice:  45000.00,
		imageURL:    "https://images.unsplash.com/photo-1566008885218-90abf9200ddb?auto=format&fit=crop&w=800&q=80",
		endsIn:      7 * 24 * time.Hour,
	},
	{
		title:       "Gibson Les Paul Custom (1985)",
		description: "Vintage electric guitar in Alpine White. Gold hardware, original pickups.",
		startPrice:  3200.00,
		imageURL:    "https://images.unsplash.com/photo-1564186763535-ebb21ef5277f?auto=format&fit=crop&w=800&q=80",
		endsIn:      12 * time.Hour,
	},
	{
		title:       "Leica M6 Rangefinder Camera",
		description: "35mm film camera body. Classic German engineering. Fully functional.",
		startPrice:  2800.00,
		imageURL:    "https://images.unsplash.com/photo-1516035069371-29a1b244cc32?auto=format&fit=crop&w=800&q=80",
		endsIn:      72 * time.Hour,
	},
	{
		title:       "Eames Lounge Chair & Ottoman",
		description: "Original mid-century modern design. Rosewood and black leather.",
		startPrice:  5500.00,
		imageURL:    "https://images.unsplash.com/photo-1567538096630-e0c55bd6374c?auto=format&fit=crop&w=800&q=80",
		endsIn:      5 * 24 * time.Hour,
	},
	{
		title:       "Nintendo Game Boy (1989)",
		description: "Original grey brick console. Mint condition, still in box. Tetris included.",
		startPrice:  450.00,
		imageURL:    "https://images.unsplash.com/photo-1531525645387-7f14be1bdbbd?auto=format&fit=crop&w=800&q=80",
		endsIn:      10 * 24 * time.Hour,
	},
	{
		title:       "Diamond Solitaire Ring (1.5ct)",
		description: "Brilliant cut diamond set in 18k white gold. GIA certified.",
		startPrice:  8900.00,
		imageURL:    "https://images.unsplash.com/photo-1605100804763-247f67b3557e?auto=format&fit=crop&w=800&q=80",
		endsIn:      6 * time.Hour,
	},
}

func main() {
	cfg := config.Load()

	db, err := repository.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		utils.Fatal("failed to open database", map[string]any{"driver": cfg.DBDriver, "error": err.Error()})
	}

	ledger, err := repository.NewGormLedger(db)
	if err != nil {
		utils.Fatal("failed to initialize ledger", map[string]any{"error": err.Error()})
	}

	authSvc := auth.NewAuthService(ledger, cfg.JWTSecret, cfg.TokenTTL)

	admin := ensureUser(ledger, authSvc, "Administrator", "admin@auction.local", "change-me-now")
	if admin.Role != models.RoleAdmin {
		if err := db.Model(&models.User{}).Where("user_id = ?", admin.UserID).Update("role", models.RoleAdmin).Error; err != nil {
			utils.Fatal("failed to promote admin", map[string]any{"error": err.Error()})
		}
		utils.Info("promoted account to admin", map[string]any{"email": admin.Email})
	}

	seller := ensureUser(ledger, authSvc, "Auction House", "seller@auction.local", "change-me-now")

	for _, item := range catalog {
		product := models.Product{
			ProductID:   utils.GenerateID(),
			SellerID:    seller.UserID,
			Title:       item.title,
			Description: item.description,
			StartPrice:  item.startPrice,
			ImageURL:    item.imageURL,
			EndsAt:      time.Now().UTC().Add(item.endsIn),
			CreatedAt:   time.Now().UTC(),
		}
		if err := ledger.CreateProduct(product); err != nil {
			utils.Fatal("failed to seed product", map[string]any{"title": item.title, "error": err.Error()})
		}
		utils.Info("seeded product", map[string]any{"title": item.title, "start_price": item.startPrice})
	}

	utils.Info("seeding complete", map[string]any{"products": len(catalog)})
}

func ensureUser(ledger *repository.GormLedger, authSvc *auth.AuthService, name, email, password string) models.User {
	if user, err := ledger.GetUserByEmail(email); err == nil {
		return user
	}

	user, err := authSvc.Signup(name, email, password)
	if err != nil {
		utils.Fatal("failed to seed user", map[string]any{"email": email, "error": err.Error()})
	}
	return user
}
