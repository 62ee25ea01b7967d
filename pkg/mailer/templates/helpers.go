package templates

import (
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option { return func(d *EmailData) { d.IP = strings.TrimSpace(ip) } }

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithReason(reason string) Option { return func(d *EmailData) { d.Reason = reason } }

// NewBaseEmailData fills the common fields, then applies opts.
func NewBaseEmailData(appName, typ, recipient string, opts ...Option) EmailData {
	d := EmailData{
		AppName:        appName,
		RecipientEmail: recipient,
		Type:           typ,
	}
	WithTime(time.Now())(&d)
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewUserRegisteredData describes a new account for the operator notification.
func NewUserRegisteredData(appName, recipient, userID, login, fullName, country string, opts ...Option) map[string]any {
	d := NewBaseEmailData(appName, UserRegistered, recipient, opts...)
	d.UserID, d.Login, d.FullName, d.Country = userID, login, fullName, country
	return ToMap(d)
}

// NewOrphanedAssetData describes a remote object left without a consistent record.
func NewOrphanedAssetData(appName, recipient, userID, remoteID, assetID string, opts ...Option) map[string]any {
	d := NewBaseEmailData(appName, OrphanedAsset, recipient, opts...)
	d.UserID, d.RemoteID, d.AssetID = userID, remoteID, assetID
	return ToMap(d)
}
