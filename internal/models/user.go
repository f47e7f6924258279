package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DBName       = "talentfolio"
	UsersColName = "users"
)

// Enumerated choices served to clients by GET /options. Stored values are
// free strings; these are the ones the UI offers.
var (
	AvailabilityOptions = []string{"open", "actively-looking", "not-looking", "unavailable"}
	JobTypeOptions      = []string{"full-time", "part-time", "contract", "internship", "freelance"}
	WorkModeOptions     = []string{"remote", "on site", "hybrid"}
)

// ExperienceItem is a structured work-experience entry embedded in a User.
// Items are addressed by their ObjectID, never by index, so identities stay
// stable across updates and deletes.
type ExperienceItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Company   string             `bson:"company" json:"company"`
	StartDate *time.Time         `bson:"startDate" json:"startDate"`
	EndDate   *time.Time         `bson:"endDate" json:"endDate"`
	// Ongoing marks the position as current. A nil EndDate on its own only
	// means the end date is unknown.
	Ongoing     bool      `bson:"ongoing" json:"ongoing"`
	Location    string    `bson:"location" json:"location"`
	WorkMode    string    `bson:"workMode" json:"workMode"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updated_at"`
}

// EducationItem is a structured education entry embedded in a User.
type EducationItem struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Degree      string             `bson:"degree" json:"degree"`
	School      string             `bson:"school" json:"school"`
	StartDate   *time.Time         `bson:"startDate" json:"startDate"`
	EndDate     *time.Time         `bson:"endDate" json:"endDate"`
	Location    string             `bson:"location" json:"location"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username" validate:"required,min=3,max=60"`
	Email    string             `bson:"email" json:"email" validate:"required,email"`
	// Password holds the bcrypt hash. It never serializes to JSON.
	Password string `bson:"password" json:"-"`

	Phone        string   `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      string   `bson:"address,omitempty" json:"address,omitempty"`
	LocationText string   `bson:"locationText,omitempty" json:"locationText,omitempty"`
	AvatarURL    string   `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	AvatarID     string   `bson:"avatarId,omitempty" json:"-"`
	Title        string   `bson:"title,omitempty" json:"title,omitempty"`
	Summary      string   `bson:"summary,omitempty" json:"summary,omitempty"`
	HourlyRate   *float64 `bson:"hourlyRate,omitempty" json:"hourlyRate,omitempty"`
	Availability string   `bson:"availability,omitempty" json:"availability,omitempty"`
	JobType      string   `bson:"jobType,omitempty" json:"jobType,omitempty"`

	Skills         []string `bson:"skills" json:"skills"`
	Certifications []string `bson:"certifications" json:"certifications"`

	ExperienceItems []ExperienceItem `bson:"experienceItems" json:"experienceItems"`
	EducationItems  []EducationItem  `bson:"educationItems" json:"educationItems"`

	// Legacy plain-text fallbacks, kept for old clients. Excluded from
	// default reads; still writable through the scalar PATCH path.
	Education  string `bson:"education,omitempty" json:"-"`
	Experience string `bson:"experience,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

func (u *User) BeforeCreate() {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.Certifications == nil {
		u.Certifications = []string{}
	}
	if u.ExperienceItems == nil {
		u.ExperienceItems = []ExperienceItem{}
	}
	if u.EducationItems == nil {
		u.EducationItems = []EducationItem{}
	}
}
