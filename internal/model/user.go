package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// OTPChallenge is the outstanding one-time passcode for a user, if any.
// Code and ExpiresAt are always written and cleared together; a zero value
// means no challenge is pending.
type OTPChallenge struct {
	Code      string     `json:"-" gorm:"column:otp_code;size:8"`
	ExpiresAt *time.Time `json:"-" gorm:"column:otp_expires_at"`
}

// Outstanding reports whether a challenge is currently set.
func (c OTPChallenge) Outstanding() bool {
	return c.Code != ""
}

// Expired reports whether the challenge has an expiry in the past relative to now.
func (c OTPChallenge) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Matches reports whether code equals the stored challenge code. A cleared
// challenge never matches.
func (c OTPChallenge) Matches(code string) bool {
	return c.Code != "" && c.Code == code
}

// User represents a registered user account.
type User struct {
	ID              uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Name            string       `json:"name" gorm:"size:255;not null"`
	Email           string       `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone           string       `json:"phone,omitempty" gorm:"size:32"`
	PasswordHash    string       `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	IsEmailVerified bool         `json:"is_email_verified" gorm:"default:false"`
	IsPhoneVerified bool         `json:"is_phone_verified" gorm:"default:false"`
	Avatar          string       `json:"avatar,omitempty" gorm:"size:512"`
	IsAccountActive bool         `json:"is_account_active" gorm:"default:true"`
	OTP             OTPChallenge `json:"-" gorm:"embedded"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// BeforeCreate sets the UUID before inserting the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SetPassword hashes plaintext with bcrypt and stores the result. Every code
// path that changes a password goes through here, so the hash can never be
// bypassed or double-applied.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// SetOTP replaces the outstanding challenge with code expiring at expiresAt.
func (u *User) SetOTP(code string, expiresAt time.Time) {
	u.OTP = OTPChallenge{Code: code, ExpiresAt: &expiresAt}
}

// ClearOTP removes the outstanding challenge, code and expiry together.
func (u *User) ClearOTP() {
	u.OTP = OTPChallenge{}
}

// NormalizeEmail lower-cases and trims an email address. All lookups and
// writes use the normalized form, so the unique index is effectively
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
