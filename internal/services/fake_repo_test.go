package services_test

import (
	"context"
	"strings"
	"time"

	"github.com/talentfolio/server/internal/apperror"
	"github.com/talentfolio/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserRepo is an in-memory stand-in for the Mongo repository. It applies
// the same mutation semantics the real store guarantees: set/unset on named
// fields, add-if-absent and remove-all on tag arrays, id-addressed updates
// on embedded items, and the unique username/email indexes on insert.
type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

var _ models.UserRepo = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserRepo) get(id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFoundf("user not found")
	}
	return user, nil
}

func (f *fakeUserRepo) EnsureIndexes(_ context.Context) error {
	return nil
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	// duplicate-key behaviour of the unique indexes
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, apperror.Conflictf("user already exists")
		}
	}
	user.BeforeCreate()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.get(id)
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperror.NotFoundf("user not found")
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFoundf("user not found")
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) SearchUsers(_ context.Context, term string) ([]*models.User, error) {
	term = strings.ToLower(term)
	var users []*models.User
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Username), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) ApplyProfileUpdate(_ context.Context, id primitive.ObjectID, set bson.M, unset []string) (*models.User, error) {
	user, err := f.get(id)
	if err != nil {
		return nil, err
	}
	for key, value := range set {
		f.applyScalar(user, key, value)
	}
	for _, key := range unset {
		f.clearScalar(user, key)
	}
	user.UpdatedAt = time.Now()
	return user, nil
}

func (f *fakeUserRepo) applyScalar(user *models.User, key string, value any) {
	switch key {
	case "phone":
		user.Phone = value.(string)
	case "address":
		user.Address = value.(string)
	case "locationText":
		user.LocationText = value.(string)
	case "avatarUrl":
		user.AvatarURL = value.(string)
	case "title":
		user.Title = value.(string)
	case "summary":
		user.Summary = value.(string)
	case "hourlyRate":
		rate := value.(float64)
		user.HourlyRate = &rate
	case "availability":
		user.Availability = value.(string)
	case "jobType":
		user.JobType = value.(string)
	case "education":
		user.Education = value.(string)
	case "experience":
		user.Experience = value.(string)
	}
}

func (f *fakeUserRepo) clearScalar(user *models.User, key string) {
	switch key {
	case "phone":
		user.Phone = ""
	case "address":
		user.Address = ""
	case "locationText":
		user.LocationText = ""
	case "avatarUrl":
		user.AvatarURL = ""
	case "title":
		user.Title = ""
	case "summary":
		user.Summary = ""
	case "hourlyRate":
		user.HourlyRate = nil
	case "availability":
		user.Availability = ""
	case "jobType":
		user.JobType = ""
	case "education":
		user.Education = ""
	case "experience":
		user.Experience = ""
	}
}

func (f *fakeUserRepo) ApplyArrayUpdates(_ context.Context, id primitive.ObjectID, adds, pulls map[string][]string) (*models.User, error) {
	user, err := f.get(id)
	if err != nil {
		return nil, err
	}

	apply := func(field string) {
		target := &user.Skills
		if field == models.FieldCertifications {
			target = &user.Certifications
		}
		for _, v := range adds[field] {
			if !containsString(*target, v) {
				*target = append(*target, v)
			}
		}
		for _, v := range pulls[field] {
			kept := (*target)[:0]
			for _, existing := range *target {
				if existing != v {
					kept = append(kept, existing)
				}
			}
			*target = kept
		}
	}
	apply(models.FieldSkills)
	apply(models.FieldCertifications)

	user.UpdatedAt = time.Now()
	return user, nil
}

func (f *fakeUserRepo) AppendItem(_ context.Context, id primitive.ObjectID, field string, item any) (*models.User, error) {
	user, err := f.get(id)
	if err != nil {
		return nil, err
	}
	switch v := item.(type) {
	case models.ExperienceItem:
		user.ExperienceItems = append(user.ExperienceItems, v)
	case models.EducationItem:
		user.EducationItems = append(user.EducationItems, v)
	}
	user.UpdatedAt = time.Now()
	return user, nil
}

func (f *fakeUserRepo) UpdateItem(_ context.Context, id primitive.ObjectID, field string, itemID primitive.ObjectID, set bson.M) (*models.User, error) {
	user, err := f.get(id)
	if err != nil {
		return nil, err
	}

	assign := func(target map[string]any) {
		for key, value := range set {
			parts := strings.Split(key, ".$.")
			if len(parts) == 2 {
				target[parts[1]] = value
			}
		}
	}

	if field == models.FieldExperienceItems {
		for i := range user.ExperienceItems {
			if user.ExperienceItems[i].ID != itemID {
				continue
			}
			fields := map[string]any{}
			assign(fields)
			applyExperienceFields(&user.ExperienceItems[i], fields)
			user.UpdatedAt = time.Now()
			return user, nil
		}
		return nil, apperror.NotFoundf("experience not found")
	}

	for i := range user.EducationItems {
		if user.EducationItems[i].ID != itemID {
			continue
		}
		fields := map[string]any{}
		assign(fields)
		applyEducationFields(&user.EducationItems[i], fields)
		user.UpdatedAt = time.Now()
		return user, nil
	}
	return nil, apperror.NotFoundf("education not found")
}

func applyExperienceFields(item *models.ExperienceItem, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "title":
			item.Title = value.(string)
		case "company":
			item.Company = value.(string)
		case "location":
			item.Location = value.(string)
		case "workMode":
			item.WorkMode = value.(string)
		case "description":
			item.Description = value.(string)
		case "ongoing":
			item.Ongoing = value.(bool)
		case "startDate":
			item.StartDate, _ = value.(*time.Time)
		case "endDate":
			item.EndDate, _ = value.(*time.Time)
		case "updatedAt":
			item.UpdatedAt = value.(time.Time)
		}
	}
}

func applyEducationFields(item *models.EducationItem, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "degree":
			item.Degree = value.(string)
		case "school":
			item.School = value.(string)
		case "location":
			item.Location = value.(string)
		case "description":
			item.Description = value.(string)
		case "startDate":
			item.StartDate, _ = value.(*time.Time)
		case "endDate":
			item.EndDate, _ = value.(*time.Time)
		case "updatedAt":
			item.UpdatedAt = value.(time.Time)
		}
	}
}

func (f *fakeUserRepo) DeleteItem(_ context.Context, id primitive.ObjectID, field string, itemID primitive.ObjectID) (*models.User, error) {
	user, err := f.get(id)
	if err != nil {
		return nil, err
	}

	if field == models.FieldExperienceItems {
		for i := range user.ExperienceItems {
			if user.ExperienceItems[i].ID == itemID {
				user.ExperienceItems = append(user.ExperienceItems[:i], user.ExperienceItems[i+1:]...)
				user.UpdatedAt = time.Now()
				return user, nil
			}
		}
		return nil, apperror.NotFoundf("experience not found")
	}

	for i := range user.EducationItems {
		if user.EducationItems[i].ID == itemID {
			user.EducationItems = append(user.EducationItems[:i], user.EducationItems[i+1:]...)
			user.UpdatedAt = time.Now()
			return user, nil
		}
	}
	return nil, apperror.NotFoundf("education not found")
}

func (f *fakeUserRepo) SetAvatar(_ context.Context, id primitive.ObjectID, url, storageID string) (*models.User, error) {
	user, err := f.get(id)
	if err != nil {
		return nil, err
	}
	user.AvatarURL = url
	user.AvatarID = storageID
	user.UpdatedAt = time.Now()
	return user, nil
}

func containsString(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
