package entity

import "time"

// Asset is the persisted metadata of an image kept in the remote asset store.
// RemoteID is the identifier used to delete the remote object.
type Asset struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	RemoteID     string    `gorm:"column:remote_id;not null"`
	Format       string    `gorm:"not null"`
	ResourceType string    `gorm:"column:resource_type;not null"`
	URL          string    `gorm:"column:url;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Asset) TableName() string { return "assets" }

// UploadResult describes an object accepted by the remote asset store.
// Provider holds fields specific to the backing service (bucket, etag, ...);
// they are never persisted.
type UploadResult struct {
	RemoteID     string
	URL          string
	Format       string
	ResourceType string
	CreatedAt    time.Time
	Provider     map[string]string
}

// AssetFromUpload projects the persisted fields out of an upload result.
func AssetFromUpload(r *UploadResult) *Asset {
	return &Asset{
		RemoteID:     r.RemoteID,
		Format:       r.Format,
		ResourceType: r.ResourceType,
		URL:          r.URL,
		CreatedAt:    r.CreatedAt,
	}
}
