package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/talentfolio/server/internal/apperror"
	"github.com/talentfolio/server/internal/helpers"
	"github.com/talentfolio/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileService struct {
	userRepo models.UserRepo
	cld      *cloudinary.Cloudinary
}

func NewProfileService(userRepo models.UserRepo, cld *cloudinary.Cloudinary) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		cld:      cld,
	}
}

// UpdateScalars applies a partial update to the writable profile fields.
// Fields absent from body stay untouched; present-and-empty fields are
// cleared; a body with nothing usable is rejected before any write.
func (ps *ProfileService) UpdateScalars(ctx context.Context, idHex string, body map[string]any) (*models.PublicProfile, error) {
	id, err := parseUserID(idHex)
	if err != nil {
		return nil, err
	}

	set, unset, err := models.ResolveUpdate(body)
	if err != nil {
		return nil, err
	}

	user, err := ps.userRepo.ApplyProfileUpdate(ctx, id, set, unset)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

// ArrayUpdate carries both call shapes for tag reconciliation: explicit
// add/remove deltas, and the full desired collections (Skills/Certificates
// non-nil means "make the stored collection look like this").
type ArrayUpdate struct {
	AddSkills          []string `json:"addSkills"`
	RemoveSkills       []string `json:"removeSkills"`
	AddCertificates    []string `json:"addCertificates"`
	RemoveCertificates []string `json:"removeCertificates"`

	Skills       []string `json:"skills"`
	Certificates []string `json:"certificates"`
}

func (ps *ProfileService) UpdateArrays(ctx context.Context, idHex string, req ArrayUpdate) (*models.PublicProfile, error) {
	id, err := parseUserID(idHex)
	if err != nil {
		return nil, err
	}

	// The desired-state form needs the stored collections to diff against.
	if req.Skills != nil || req.Certificates != nil {
		current, err := ps.userRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if req.Skills != nil {
			add, remove := models.DiffTags(current.Skills, req.Skills)
			req.AddSkills = append(req.AddSkills, add...)
			req.RemoveSkills = append(req.RemoveSkills, remove...)
		}
		if req.Certificates != nil {
			add, remove := models.DiffTags(current.Certifications, req.Certificates)
			req.AddCertificates = append(req.AddCertificates, add...)
			req.RemoveCertificates = append(req.RemoveCertificates, remove...)
		}
	}

	adds := map[string][]string{}
	pulls := map[string][]string{}
	changed := false

	for _, col := range []struct {
		field  string
		add    []string
		remove []string
	}{
		{models.FieldSkills, req.AddSkills, req.RemoveSkills},
		{models.FieldCertifications, req.AddCertificates, req.RemoveCertificates},
	} {
		if len(col.add) == 0 && len(col.remove) == 0 {
			continue
		}
		addToSet, pull, err := models.ReconcileTags(col.add, col.remove)
		if err != nil {
			continue // everything cleaned away; other collection may still change
		}
		if len(addToSet) > 0 {
			adds[col.field] = addToSet
		}
		if len(pull) > 0 {
			pulls[col.field] = pull
		}
		changed = true
	}

	if !changed {
		return nil, apperror.Validationf("no array changes provided")
	}

	user, err := ps.userRepo.ApplyArrayUpdates(ctx, id, adds, pulls)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

func (ps *ProfileService) AddExperience(ctx context.Context, idHex string, body map[string]any) (*models.PublicProfile, error) {
	id, err := parseUserID(idHex)
	if err != nil {
		return nil, err
	}
	item, err := models.ExperienceFromInput(body)
	if err != nil {
		return nil, err
	}
	item.ID = primitive.NewObjectID()

	user, err := ps.userRepo.AppendItem(ctx, id, models.FieldExperienceItems, item)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

func (ps *ProfileService) UpdateExperience(ctx context.Context, idHex, itemHex string, body map[string]any) (*models.PublicProfile, error) {
	return ps.updateItem(ctx, idHex, itemHex, models.FieldExperienceItems, body)
}

func (ps *ProfileService) DeleteExperience(ctx context.Context, idHex, itemHex string) (*models.PublicProfile, error) {
	return ps.deleteItem(ctx, idHex, itemHex, models.FieldExperienceItems)
}

func (ps *ProfileService) AddEducation(ctx context.Context, idHex string, body map[string]any) (*models.PublicProfile, error) {
	id, err := parseUserID(idHex)
	if err != nil {
		return nil, err
	}
	item, err := models.EducationFromInput(body)
	if err != nil {
		return nil, err
	}
	item.ID = primitive.NewObjectID()

	user, err := ps.userRepo.AppendItem(ctx, id, models.FieldEducationItems, item)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

func (ps *ProfileService) UpdateEducation(ctx context.Context, idHex, itemHex string, body map[string]any) (*models.PublicProfile, error) {
	return ps.updateItem(ctx, idHex, itemHex, models.FieldEducationItems, body)
}

func (ps *ProfileService) DeleteEducation(ctx context.Context, idHex, itemHex string) (*models.PublicProfile, error) {
	return ps.deleteItem(ctx, idHex, itemHex, models.FieldEducationItems)
}

func (ps *ProfileService) updateItem(ctx context.Context, idHex, itemHex, field string, body map[string]any) (*models.PublicProfile, error) {
	id, err := parseUserID(idHex)
	if err != nil {
		return nil, err
	}
	itemID, err := parseItemID(itemHex)
	if err != nil {
		return nil, err
	}

	var set map[string]any
	switch field {
	case models.FieldExperienceItems:
		set, err = models.ResolveExperienceItemUpdate(body)
	default:
		set, err = models.ResolveEducationItemUpdate(body)
	}
	if err != nil {
		return nil, err
	}

	user, err := ps.userRepo.UpdateItem(ctx, id, field, itemID, set)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

func (ps *ProfileService) deleteItem(ctx context.Context, idHex, itemHex, field string) (*models.PublicProfile, error) {
	id, err := parseUserID(idHex)
	if err != nil {
		return nil, err
	}
	itemID, err := parseItemID(itemHex)
	if err != nil {
		return nil, err
	}

	user, err := ps.userRepo.DeleteItem(ctx, id, field, itemID)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

// UploadAvatar pushes the image buffer to Cloudinary and stores the
// resulting URL plus storage id on the user.
func (ps *ProfileService) UploadAvatar(ctx context.Context, idHex string, buf []byte, contentType string) (*models.PublicProfile, error) {
	id, err := parseUserID(idHex)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, apperror.Validationf("no file uploaded")
	}
	if len(buf) > helpers.MaxAvatarBytes {
		return nil, apperror.Validationf("file exceeds the 5MB limit")
	}
	if !helpers.IsAllowedImageType(contentType) {
		return nil, apperror.Validationf("only JPG and PNG allowed")
	}

	publicID := fmt.Sprintf("user_%s_%d", idHex, time.Now().UnixMilli())
	res, err := helpers.UploadBuffer(ctx, ps.cld, buf, helpers.AvatarFolder, publicID)
	if err != nil {
		return nil, apperror.New(apperror.External, "failed to upload avatar", err)
	}

	user, err := ps.userRepo.SetAvatar(ctx, id, res.PublicURL, res.StorageID)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

// ProfileOptions are the static enumerated choices the edit form offers.
type ProfileOptions struct {
	Availability []string `json:"availability"`
	JobTypes     []string `json:"jobTypes"`
	WorkModes    []string `json:"workModes"`
}

func (ps *ProfileService) Options() ProfileOptions {
	return ProfileOptions{
		Availability: models.AvailabilityOptions,
		JobTypes:     models.JobTypeOptions,
		WorkModes:    models.WorkModeOptions,
	}
}

func parseItemID(itemHex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(itemHex)
	if err != nil {
		return primitive.NilObjectID, apperror.Validationf("invalid item ID format")
	}
	return id, nil
}
