package seed

import (
	"time"

	"cleanhub/config"
	. "cleanhub/internal/models"
	"cleanhub/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const devTokenTTL = 7 * 24 * time.Hour

type seedUser struct {
	user    User
	deposit decimal.Decimal
}

func stringPtr(s string) *string {
	return &s
}

// Seed creates one user per role, funds them through ledger entries and prints
// a bearer token for each so the API can be exercised locally.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []seedUser{
		{
			user: User{
				FirstName: "Admin",
				LastName:  "User",
				Email:     stringPtr("admin@example.com"),
				Role:      RoleAdmin,
				IsActive:  true,
			},
		},
		{
			user: User{
				FirstName: "Rhea",
				LastName:  "Requester",
				Email:     stringPtr("rhea@example.com"),
				Role:      RoleUser,
				IsActive:  true,
			},
			deposit: decimal.NewFromInt(100),
		},
		{
			user: User{
				FirstName: "Cal",
				LastName:  "Cleaner",
				Email:     stringPtr("cal@example.com"),
				Role:      RoleCleaner,
				IsActive:  true,
			},
		},
	}

	tokens := services.NewTokenService(config)

	return db.Transaction(func(tx *gorm.DB) error {
		for i := range users {
			seeded := &users[i]
			if err := tx.Create(&seeded.user).Error; err != nil {
				return log.Err("failed to create user", err, "email", *seeded.user.Email)
			}

			if seeded.deposit.IsPositive() {
				if err := fund(tx, &seeded.user, seeded.deposit); err != nil {
					return log.Err("failed to fund user", err, "userID", seeded.user.ID)
				}
			}

			token, err := tokens.IssueToken(seeded.user.ID, devTokenTTL)
			if err != nil {
				return log.Err("failed to issue token", err, "userID", seeded.user.ID)
			}

			log.Info(
				"Seeded user",
				"role", seeded.user.Role,
				"userID", seeded.user.ID,
				"balance", seeded.user.Balance.StringFixed(2),
				"token", token,
			)
		}

		property := Property{
			OwnerID:      users[1].user.ID,
			Name:         "Home",
			Address:      "1 Main St",
			City:         "Springfield",
			PropertyType: PropertyHouse,
			Bedrooms:     3,
			Bathrooms:    2,
		}
		if err := tx.Create(&property).Error; err != nil {
			return log.Err("failed to create property", err)
		}

		log.Info("Seeded property", "propertyID", property.ID, "ownerID", property.OwnerID)
		return nil
	})
}

func fund(tx *gorm.DB, user *User, amount decimal.Decimal) error {
	user.Balance = user.Balance.Add(amount)

	entry := LedgerEntry{
		UserID:       user.ID,
		Kind:         LedgerCredit,
		Amount:       amount,
		BalanceAfter: user.Balance,
		EventKey:     DepositKey(uuid.New()),
		Description:  "seed deposit",
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	return tx.Model(user).Update("balance", user.Balance).Error
}
