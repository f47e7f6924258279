package models

import "time"

// PublicExperience is the externally visible shape of one experience entry.
type PublicExperience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Ongoing     bool       `json:"ongoing"`
	Location    string     `json:"location"`
	WorkMode    string     `json:"workMode"`
	Description string     `json:"description"`
}

// PublicEducation is the externally visible shape of one education entry.
type PublicEducation struct {
	ID          string     `json:"id"`
	Degree      string     `json:"degree"`
	School      string     `json:"school"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
}

// PublicProfile is what every read path returns. It has no field for the
// password hash or the avatar storage id, so projecting twice is a no-op:
// there is nothing left to strip.
type PublicProfile struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone,omitempty"`
	Address      string   `json:"address,omitempty"`
	LocationText string   `json:"locationText,omitempty"`
	AvatarURL    string   `json:"avatarUrl,omitempty"`
	Title        string   `json:"title,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	HourlyRate   *float64 `json:"hourlyRate,omitempty"`
	Availability string   `json:"availability,omitempty"`
	JobType      string   `json:"jobType,omitempty"`

	Skills         []string `json:"skills"`
	Certifications []string `json:"certifications"`
	// Certificates mirrors Certifications under the alias older clients
	// still read. The duplication exists only at this boundary; storage
	// holds a single array.
	Certificates []string `json:"certificates"`

	ExperienceItems []PublicExperience `json:"experienceItems"`
	EducationItems  []PublicEducation  `json:"educationItems"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicProfile projects the stored document into its external form.
func (u *User) PublicProfile() *PublicProfile {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	certs := u.Certifications
	if certs == nil {
		certs = []string{}
	}

	experience := make([]PublicExperience, 0, len(u.ExperienceItems))
	for _, item := range u.ExperienceItems {
		experience = append(experience, PublicExperience{
			ID:          item.ID.Hex(),
			Title:       item.Title,
			Company:     item.Company,
			StartDate:   item.StartDate,
			EndDate:     item.EndDate,
			Ongoing:     item.Ongoing,
			Location:    item.Location,
			WorkMode:    item.WorkMode,
			Description: item.Description,
		})
	}

	education := make([]PublicEducation, 0, len(u.EducationItems))
	for _, item := range u.EducationItems {
		education = append(education, PublicEducation{
			ID:          item.ID.Hex(),
			Degree:      item.Degree,
			School:      item.School,
			StartDate:   item.StartDate,
			EndDate:     item.EndDate,
			Location:    item.Location,
			Description: item.Description,
		})
	}

	return &PublicProfile{
		ID:              u.ID.Hex(),
		Username:        u.Username,
		Email:           u.Email,
		Phone:           u.Phone,
		Address:         u.Address,
		LocationText:    u.LocationText,
		AvatarURL:       u.AvatarURL,
		Title:           u.Title,
		Summary:         u.Summary,
		HourlyRate:      u.HourlyRate,
		Availability:    u.Availability,
		JobType:         u.JobType,
		Skills:          skills,
		Certifications:  certs,
		Certificates:    certs,
		ExperienceItems: experience,
		EducationItems:  education,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
