package handlers

import (
	"time"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

const dateLayout = "2006-01-02"

type assetView struct {
	AssetID      string    `json:"asset_id"`
	Format       string    `json:"format"`
	ResourceType string    `json:"resource_type"`
	CreatedAt    time.Time `json:"created_at"`
	URL          string    `json:"url"`
}

type userView struct {
	ID        string     `json:"id"`
	Login     string     `json:"login"`
	FullName  string     `json:"fullname"`
	Country   string     `json:"country"`
	DOB       string     `json:"dob"`
	ImageID   *string    `json:"image_id"`
	Assets    *assetView `json:"assets"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type bookView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	AuthorID    string    `json:"author_id"`
	Release     string    `json:"release"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func toUserView(u *entity.User) userView {
	v := userView{
		ID:        u.ID,
		Login:     u.Login,
		FullName:  u.FullName,
		Country:   u.Country,
		DOB:       formatDate(u.DateOfBirth),
		ImageID:   u.ImageID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Image != nil {
		v.Assets = &assetView{
			AssetID:      u.Image.ID,
			Format:       u.Image.Format,
			ResourceType: u.Image.ResourceType,
			CreatedAt:    u.Image.CreatedAt,
			URL:          u.Image.URL,
		}
	}
	return v
}

func toBookView(b *entity.Book) bookView {
	return bookView{
		ID:          b.ID,
		Title:       b.Title,
		AuthorID:    b.AuthorID,
		Release:     formatDate(b.ReleaseDate),
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBookViews(books []entity.Book) []bookView {
	out := make([]bookView, 0, len(books))
	for i := range books {
		out = append(out, toBookView(&books[i]))
	}
	return out
}

// parseDate parses a date already checked by the isodate rule.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperror.Wrap(apperror.KindInvalidBody, "Invalid form data: date must be YYYY-MM-DD", err)
	}
	return t, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
