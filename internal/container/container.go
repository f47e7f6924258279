package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/talentfolio/server/internal/config"
	"github.com/talentfolio/server/internal/models"
	"github.com/talentfolio/server/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	MongoDBClient  *mongo.Client
	Config         *config.Config
	JWTSecret      string
	UserRepo       models.UserRepo
	UserService    *services.UserService
	ProfileService *services.ProfileService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
	cfg *config.Config,
) *Container {
	// Initialize repositories
	repo := models.MongodbNewRepo(mongoDBClient)
	userService := services.NewUserService(repo, cfg.JWTSecret, cfg.TokenTTL)
	profileService := services.NewProfileService(repo, cld)

	return &Container{
		Logger:         logger,
		Cloudinary:     cld,
		MongoDBClient:  mongoDBClient,
		Config:         cfg,
		JWTSecret:      cfg.JWTSecret,
		UserRepo:       repo,
		UserService:    userService,
		ProfileService: profileService,
	}
}
