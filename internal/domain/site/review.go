package site

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var ErrInvalidReview = errors.New("invalid review")

const (
	maxReviewerName = 80
	maxReviewText   = 1000
)

// Review is a visitor's rating of a published page. Owners can hide a review
// from the public page without deleting it.
type Review struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	PageID        string    `gorm:"size:36;not null;index" json:"page_id" bson:"page_id"`
	OwnerID       string    `gorm:"size:36;not null;index" json:"owner_id" bson:"owner_id"`
	Rating        int       `gorm:"not null" json:"rating" bson:"rating"`
	ReviewerName  string    `gorm:"not null" json:"reviewer_name" bson:"reviewer_name"`
	ReviewerEmail string    `json:"reviewer_email,omitempty" bson:"reviewer_email,omitempty"`
	Comment       string    `json:"comment,omitempty" bson:"comment,omitempty"`
	Visible       bool      `gorm:"column:is_visible;not null" json:"is_visible" bson:"is_visible"`
	CreatedAt     time.Time `gorm:"index" json:"created_at" bson:"created_at"`
}

func (r *Review) RecordID() string      { return r.ID }
func (r *Review) SetRecordID(id string) { r.ID = id }

// Normalize trims the free-text fields and checks the review can be stored.
func (r *Review) Normalize() error {
	r.ReviewerName = strings.TrimSpace(r.ReviewerName)
	r.ReviewerEmail = strings.TrimSpace(r.ReviewerEmail)
	r.Comment = strings.TrimSpace(r.Comment)
	switch {
	case r.Rating < 1 || r.Rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidReview)
	case r.ReviewerName == "":
		return fmt.Errorf("%w: reviewer name is required", ErrInvalidReview)
	case utf8.RuneCountInString(r.ReviewerName) > maxReviewerName:
		return fmt.Errorf("%w: reviewer name is too long", ErrInvalidReview)
	case utf8.RuneCountInString(r.Comment) > maxReviewText:
		return fmt.Errorf("%w: comment is too long", ErrInvalidReview)
	}
	return nil
}

// Matches reports whether r passes a rating filter (zero means any) and a
// case-insensitive search over the reviewer name and comment.
func (r Review) Matches(rating int, search string) bool {
	if rating != 0 && r.Rating != rating {
		return false
	}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.ReviewerName), search) ||
		strings.Contains(strings.ToLower(r.Comment), search)
}
