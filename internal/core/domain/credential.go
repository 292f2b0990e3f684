package domain

import (
	"strings"
	"time"
)

// Credential is a cached login snapshot written by the external auth flow.
// The core reads it and never mutates it. ExpiryDate and ObtainedAt are epoch milliseconds.
type Credential struct {
	AccessToken   string `yaml:"access_token" json:"accessToken"`
	RefreshToken  string `yaml:"refresh_token" json:"refreshToken"`
	ExpiryDate    int64  `yaml:"expiry_date" json:"expiryDate"`
	ObtainedAt    int64  `yaml:"obtained_at" json:"obtainedAt"`
	Email         string `yaml:"email,omitempty" json:"email,omitempty"`
	Name          string `yaml:"name,omitempty" json:"name,omitempty"`
	DriveFolderID string `yaml:"drive_folder_id,omitempty" json:"driveFolderId,omitempty"`
}

// HasTokens reports whether both the access and refresh token are present
func (c *Credential) HasTokens() bool {
	return c != nil &&
		strings.TrimSpace(c.AccessToken) != "" &&
		strings.TrimSpace(c.RefreshToken) != ""
}

// Expiry returns the expiry as a time.Time (zero if unknown)
func (c *Credential) Expiry() time.Time {
	if c == nil || c.ExpiryDate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.ExpiryDate)
}

// Mode is the connectivity state decided by the session gate
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	ModeExpired Mode = "expired"
)

// RemoteSession is one playground session listed from the remote drive
type RemoteSession struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}
