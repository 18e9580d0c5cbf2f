package site

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

/*
	Slug helpers
	------------
	- generating slugs and handles
	- building public URLs
	- no storage and no access logic here
*/

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
	validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

const maxSlugLen = 60

var (
	ErrNoFreeSlug  = errors.New("no free slug")
	ErrInvalidSlug = errors.New("slug may only contain lowercase letters, digits and single dashes")
)

// MakeSlug generates a URL-safe slug from free text.
// Example: "Spice Bazaar!" -> "spice-bazaar"
func MakeSlug(parts ...string) string {
	base := strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if len(base) > maxSlugLen {
		base = strings.Trim(base[:maxSlugLen], "-")
	}

	if base == "" {
		base = "shop"
	}
	return base
}

func ValidSlug(s string) bool {
	return len(s) <= maxSlugLen && validSlug.MatchString(s)
}

// UniqueSlug returns base, or base-2, base-3... until taken reports false.
func UniqueSlug(base string, taken func(string) (bool, error)) (string, error) {
	base = MakeSlug(base)
	for i := 1; i <= 50; i++ {
		candidate := base
		if i > 1 {
			suffix := fmt.Sprintf("-%d", i)
			candidate = strings.TrimRight(base[:min(len(base), maxSlugLen-len(suffix))], "-") + suffix
		}
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrNoFreeSlug, base)
}

// BuildPublicURL builds the public page URL from the owner handle and page slug.
// Example: ("https://kashpages.com", "spice-bazaar", "home") -> "https://kashpages.com/p/spice-bazaar/home"
func BuildPublicURL(baseURL, handle, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/p/" + handle + "/" + slug
}

// BuildShopURL builds the short public URL for a shop slug.
func BuildShopURL(baseURL, shopSlug string) string {
	return strings.TrimRight(baseURL, "/") + "/s/" + shopSlug
}
