package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "github.com/anime-shed/text-converter-go/internal/errors"
)

const blobHostSuffix = ".blob.core.windows.net"

// URLValidator checks remote image sources before they are fetched.
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts any http(s) host.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// NewURLValidatorWithOptions restricts schemes and, when hosts is non-empty, hosts.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateImageURL returns a validation AppError describing the first problem found.
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	u, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if !slices.Contains(v.allowedSchemes, strings.ToLower(u.Scheme)) {
		return apperrors.NewValidationError("URL scheme not allowed", nil).WithDetails(u.Scheme)
	}
	if u.Hostname() == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	if len(v.allowedHosts) > 0 && !slices.Contains(v.allowedHosts, u.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil).WithDetails(u.Hostname())
	}
	return nil
}

// IsBlobURL reports whether imageURL points at Azure Blob Storage.
func IsBlobURL(imageURL string) bool {
	u, err := url.Parse(imageURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), blobHostSuffix)
}
