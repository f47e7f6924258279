package services

import (
	"context"
	"strings"
	"time"

	"github.com/talentfolio/server/internal/apperror"
	"github.com/talentfolio/server/internal/helpers"
	"github.com/talentfolio/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo  models.UserRepo
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(userRepo models.UserRepo, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new account. Uniqueness of username and email is
// checked before any write so a conflict never leaves a partial document.
func (us *UserService) Register(ctx context.Context, username, email, password string) (*models.PublicProfile, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	user := &models.User{Username: username, Email: email, Password: password}
	if err := models.Validate.StructPartial(user, "Username", "Email"); err != nil {
		return nil, apperror.New(apperror.Validation, "invalid registration details", err)
	}
	if !helpers.IsPasswordStrong(password) {
		return nil, apperror.Validationf("password must be at least 8 characters and contain a letter and a number")
	}

	if _, err := us.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, apperror.Conflictf("username already taken")
	} else if !apperror.IsKind(err, apperror.NotFound) {
		return nil, err
	}
	if _, err := us.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflictf("email already in use")
	} else if !apperror.IsKind(err, apperror.NotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.New(apperror.Unknown, "failed to hash password", err)
	}
	user.Password = string(hash)

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := us.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return created.PublicProfile(), nil
}

// Login authenticates by username, falling back to email when the
// identifier looks like one, and issues an access token.
func (us *UserService) Login(ctx context.Context, identifier, password string) (string, *models.PublicProfile, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", nil, apperror.Authf("invalid credentials")
	}

	user, err := us.userRepo.FindByUsername(ctx, identifier)
	if apperror.IsKind(err, apperror.NotFound) && strings.Contains(identifier, "@") {
		user, err = us.userRepo.FindByEmail(ctx, strings.ToLower(identifier))
	}
	if err != nil {
		if apperror.IsKind(err, apperror.NotFound) {
			return "", nil, apperror.Authf("invalid credentials")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperror.Authf("invalid credentials")
	}

	token, err := helpers.IssueToken(us.jwtSecret, user.ID.Hex(), user.Username, us.tokenTTL)
	if err != nil {
		return "", nil, apperror.New(apperror.Unknown, "failed to issue token", err)
	}

	return token, user.PublicProfile(), nil
}

func (us *UserService) ListUsers(ctx context.Context) ([]*models.PublicProfile, error) {
	users, err := us.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return projectAll(users), nil
}

func (us *UserService) SearchUsers(ctx context.Context, term string) ([]*models.PublicProfile, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperror.Validationf("search query is required")
	}
	users, err := us.userRepo.SearchUsers(ctx, term)
	if err != nil {
		return nil, err
	}
	return projectAll(users), nil
}

func (us *UserService) GetProfile(ctx context.Context, idHex string) (*models.PublicProfile, error) {
	id, err := parseUserID(idHex)
	if err != nil {
		return nil, err
	}
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

func projectAll(users []*models.User) []*models.PublicProfile {
	profiles := make([]*models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.PublicProfile())
	}
	return profiles
}

func parseUserID(idHex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(idHex))
	if err != nil {
		return primitive.NilObjectID, apperror.Validationf("invalid user ID format")
	}
	return id, nil
}
