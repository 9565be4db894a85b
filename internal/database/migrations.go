package database

import (
	"github.com/courease/courease-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Field{},
		&models.Booking{},
		&models.Message{},
	)
	if err != nil {
		return err
	}

	// Update users table
	if db.Migrator().HasTable(&models.User{}) {
		columns := []string{
			"ADD COLUMN IF NOT EXISTS username text DEFAULT ''",
			"ADD COLUMN IF NOT EXISTS phone text DEFAULT ''",
			"ADD COLUMN IF NOT EXISTS role text DEFAULT 'user'",
		}

		for _, column := range columns {
			if err := db.Exec("ALTER TABLE users " + column).Error; err != nil {
				return err
			}
		}

		// Update constraint
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('user', 'admin'))`)
	}

	// Keep booking state columns constrained to the known values
	if db.Migrator().HasTable(&models.Booking{}) {
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'completed', 'cancelled'))`)

		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_payment_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_payment_status_check CHECK (payment_status IN ('unpaid', 'pending', 'paid', 'expired'))`)

		// Callback correlation is by payment_id
		db.Exec(`CREATE INDEX IF NOT EXISTS idx_bookings_payment_id ON bookings (payment_id)`)
	}

	return nil
}
