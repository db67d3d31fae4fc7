package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"mycalendar-api/models"
)

const sqlitePrefix = "sqlite://"

// Initialize opens a MySQL DSN, or a SQLite database for "sqlite://<path>" URLs.
func Initialize(databaseURL, logLevel string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:                                   logger.Default.LogMode(parseLogLevel(logLevel)),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		db, err := gorm.Open(sqlite.Open(strings.TrimPrefix(databaseURL, sqlitePrefix)), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		// SQLite has no row locks; one connection serializes writers.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	db, err := gorm.Open(mysql.Open(databaseURL), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Group{},
		&models.GroupMember{},
		&models.Event{},
		&models.EventVisibleFriend{},
		&models.EventVisibleGroup{},
		&models.EventInvitation{},
	)

	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	if err := addDatabaseConstraints(db); err != nil {
		return fmt.Errorf("failed to add database constraints: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Conflict checks scan a user's events by time window
	if !db.Migrator().HasIndex(&models.Event{}, "idx_events_creator_window") {
		if err := db.Exec("CREATE INDEX idx_events_creator_window ON events(created_by_id, start_time, end_time)").Error; err != nil {
			fmt.Printf("Warning: Could not create index for events window: %v\n", err)
		}
	}

	if !db.Migrator().HasIndex(&models.EventInvitation{}, "idx_event_invitations_user_status") {
		if err := db.Exec("CREATE INDEX idx_event_invitations_user_status ON event_invitations(user_id, status)").Error; err != nil {
			fmt.Printf("Warning: Could not create index for event_invitations status: %v\n", err)
		}
	}

	return nil
}

func addDatabaseConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "mysql" {
		return nil
	}

	// Prevent self-friendship
	if err := db.Exec("ALTER TABLE friendships ADD CONSTRAINT ck_friendships_no_self CHECK (from_user_id != to_user_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for friendships: %v\n", err)
	}

	if err := db.Exec("ALTER TABLE events ADD CONSTRAINT ck_events_time_order CHECK (start_time < end_time)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for events: %v\n", err)
	}

	return nil
}

// SeedData can be used to populate the database with initial data for development/testing
func SeedData(db *gorm.DB) error {
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)

	if userCount > 0 {
		fmt.Println("Database already has data, skipping seed")
		return nil
	}

	password, err := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	testUsers := []models.User{
		{ID: uuid.New().String(), Username: "john_doe", Email: "john@example.com", FirstName: "John", LastName: "Doe", Gender: models.GenderMale, Password: string(password)},
		{ID: uuid.New().String(), Username: "jane_smith", Email: "jane@example.com", FirstName: "Jane", LastName: "Smith", Gender: models.GenderFemale, Password: string(password)},
	}

	for _, user := range testUsers {
		if err := db.Create(&user).Error; err != nil {
			fmt.Printf("Warning: Could not create test user %s: %v\n", user.Username, err)
		}
	}

	friendship := models.Friendship{
		FromUserID: testUsers[0].ID,
		ToUserID:   testUsers[1].ID,
		IsAccepted: true,
	}
	if err := db.Create(&friendship).Error; err != nil {
		fmt.Printf("Warning: Could not create test friendship: %v\n", err)
	}

	fmt.Println("Database seeded with test users john_doe and jane_smith (password: Password1!)")
	return nil
}
