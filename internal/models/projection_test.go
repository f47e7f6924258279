package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser(t *testing.T) *User {
	t.Helper()
	rate := 55.0
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	user := &User{
		ID:             primitive.NewObjectID(),
		Username:       "alice",
		Email:          "alice@x.com",
		Password:       "$2a$10$secret-hash",
		AvatarID:       "profilepic/user_abc_123",
		Title:          "Backend Engineer",
		HourlyRate:     &rate,
		Skills:         []string{"Go", "SQL"},
		Certifications: []string{"AWS SAA"},
		ExperienceItems: []ExperienceItem{{
			ID:        primitive.NewObjectID(),
			Title:     "Engineer",
			Company:   "Acme",
			StartDate: &start,
			Ongoing:   true,
			WorkMode:  "remote",
		}},
		Education:  "legacy free text",
		Experience: "legacy free text",
	}
	return user
}

func TestPublicProfileNeverLeaksSecrets(t *testing.T) {
	profile := testUser(t).PublicProfile()

	raw, err := json.Marshal(profile)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "avatarId")
	assert.NotContains(t, string(raw), "legacy free text")
}

func TestUserJSONNeverLeaksPassword(t *testing.T) {
	// even serializing the raw document must not expose the hash
	raw, err := json.Marshal(testUser(t))
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "secret-hash")
}

func TestPublicProfileCertificatesAlias(t *testing.T) {
	profile := testUser(t).PublicProfile()

	assert.Equal(t, profile.Certifications, profile.Certificates)

	var decoded map[string]any
	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, decoded["certifications"], decoded["certificates"])
}

func TestPublicProfileFlattensItems(t *testing.T) {
	user := testUser(t)
	profile := user.PublicProfile()

	require.Len(t, profile.ExperienceItems, 1)
	item := profile.ExperienceItems[0]
	assert.Equal(t, user.ExperienceItems[0].ID.Hex(), item.ID)
	assert.Equal(t, "Engineer", item.Title)
	assert.Equal(t, "Acme", item.Company)
	assert.True(t, item.Ongoing)
}

func TestPublicProfileNilCollections(t *testing.T) {
	user := &User{ID: primitive.NewObjectID(), Username: "bob", Email: "bob@x.com"}
	profile := user.PublicProfile()

	// collections serialize as [], never null
	assert.NotNil(t, profile.Skills)
	assert.NotNil(t, profile.Certifications)
	assert.NotNil(t, profile.ExperienceItems)
	assert.NotNil(t, profile.EducationItems)
}
