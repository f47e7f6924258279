package helpers

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder = "profilepic"

	// MaxAvatarBytes caps avatar uploads at 5MB.
	MaxAvatarBytes = 5 * 1024 * 1024
)

// AvatarTransformation resizes uploads server-side so clients always get a
// square image with sane compression.
const AvatarTransformation = "c_fill,g_auto,h_1600,w_1600/f_auto,q_auto"

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	return hasLower && hasNumber
}

func IsAllowedImageType(contentType string) bool {
	return contentType == "image/jpeg" || contentType == "image/png"
}

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

// RemoveDuplicates keeps the first occurrence of each value, preserving order.
func RemoveDuplicates(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type UploadResult struct {
	PublicURL string
	StorageID string
}

// UploadBuffer sends an in-memory image to Cloudinary and returns the
// public URL plus the storage id needed to replace it later.
func UploadBuffer(ctx context.Context, cld *cloudinary.Cloudinary, buf []byte, folder, publicID string) (*UploadResult, error) {
	if cld == nil {
		return nil, fmt.Errorf("cloudinary client is not initialized")
	}

	res, err := cld.Upload.Upload(ctx, bytes.NewReader(buf), uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		Transformation: AvatarTransformation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %v", err)
	}

	return &UploadResult{
		PublicURL: res.SecureURL,
		StorageID: res.PublicID,
	}, nil
}
