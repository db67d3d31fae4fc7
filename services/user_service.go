package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"mycalendar-api/models"
	"mycalendar-api/repositories"
	"mycalendar-api/utils"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown login or a
// wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Birthday  *time.Time
	Gender    models.Gender
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if !utils.IsValidUsername(in.Username) {
		return nil, validationError("Username must be 3-150 letters, digits or . _ -")
	}
	if !utils.IsValidEmail(in.Email) {
		return nil, validationError("Invalid email address")
	}
	if !utils.IsValidPassword(in.Password) {
		return nil, validationError("Password must be at least 6 characters and mix at least 3 of: upper case, lower case, digits, symbols")
	}
	if in.Gender != "" && !in.Gender.IsValid() {
		return nil, validationError("Invalid gender")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashedPassword),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Birthday:  in.Birthday,
		Gender:    in.Gender,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)

		exists, err := users.ExistsByUsername(user.Username)
		if err != nil {
			return err
		}
		if exists {
			return conflictError("Username already taken")
		}

		exists, err = users.ExistsByEmail(user.Email)
		if err != nil {
			return err
		}
		if exists {
			return conflictError("Email already registered")
		}

		return users.Create(user)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("New user registered: %s", user.Username)
	return user, nil
}

// Authenticate accepts either the username or the email as login.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	users := repositories.NewUserRepository(s.db.WithContext(ctx))

	login = strings.TrimSpace(login)
	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = users.FindByEmail(login)
	} else {
		user, err = users.FindByUsername(login)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := repositories.NewUserRepository(s.db.WithContext(ctx)).GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// Search returns up to ten users whose username starts with query, never the
// searcher. An empty query matches nobody.
func (s *UserService) Search(ctx context.Context, userID, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}
	return repositories.NewUserRepository(s.db.WithContext(ctx)).
		SearchByUsernamePrefix(query, userID, repositories.DefaultSearchLimit)
}

// DeleteAccount removes the user and everything that references them.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		events := repositories.NewEventRepository(tx)
		groups := repositories.NewGroupRepository(tx)
		invitations := repositories.NewInvitationRepository(tx)
		friendships := repositories.NewFriendshipRepository(tx)

		if _, err := users.LockByID(userID); err != nil {
			return notFoundOr(err, "user")
		}

		ownedEvents, err := events.OwnedIDs(userID)
		if err != nil {
			return err
		}
		if err := events.DeleteMany(ownedEvents); err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}

		ownedGroups, err := groups.OwnedIDs(userID)
		if err != nil {
			return err
		}
		for _, groupID := range ownedGroups {
			if err := deleteGroupCascade(tx, groupID); err != nil {
				return err
			}
		}

		if err := invitations.DeleteForUser(userID); err != nil {
			return err
		}
		if err := groups.RemoveMemberEverywhere(userID); err != nil {
			return err
		}
		if err := events.RemoveVisibleUser(userID); err != nil {
			return err
		}
		if err := friendships.DeleteAllFor(userID); err != nil {
			return err
		}

		if err := users.Delete(userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		log.Printf("User %s deleted their account", userID)
		return nil
	})
}
