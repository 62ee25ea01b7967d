package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-library-api/pkg/apperror"
)

type registerBody struct {
	Login    string `json:"login" binding:"required,login"`
	Password string `json:"password" binding:"required,pwd"`
	DOB      string `json:"dob" binding:"required,isodate"`
}

type patchBody struct {
	ID    int64   `json:"id" binding:"required,gt=0"`
	Title *string `json:"title" binding:"omitempty,min=1"`
	Note  *string `json:"note"`
}

func init() {
	Init(AnyOf{Type: patchBody{}, Fields: []string{"Title", "Note"}})
}

func TestValidateBody_FirstViolation(t *testing.T) {
	err := ValidateBody(&registerBody{Login: "alice", Password: "short", DOB: "1990-01-01"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidBody, apperror.KindOf(err))
	assert.Contains(t, apperror.MessageOf(err), "password min length 8")
}

func TestValidateBody_DateFormat(t *testing.T) {
	err := ValidateBody(&registerBody{Login: "alice", Password: "long-enough", DOB: "01/02/1990"})
	require.Error(t, err)
	assert.Contains(t, apperror.MessageOf(err), "dob must be a date in YYYY-MM-DD format")
}

func TestValidateBody_Valid(t *testing.T) {
	assert.NoError(t, ValidateBody(&registerBody{Login: "alice", Password: "long-enough", DOB: "1990-01-01"}))
}

func TestValidateBody_PatchNeedsOneField(t *testing.T) {
	err := ValidateBody(&patchBody{ID: 1})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidBody, apperror.KindOf(err))
	assert.Contains(t, apperror.MessageOf(err), "at least one of: title, note")

	title := "Dune"
	assert.NoError(t, ValidateBody(&patchBody{ID: 1, Title: &title}))
}

type bookBody struct {
	Title    string  `json:"title" binding:"required,min=1,max=5"`
	Year     int     `json:"year" binding:"gt=0"`
	AuthorID *string `json:"author_id" binding:"omitempty,uuid"`
	Contact  string  `json:"contact" binding:"omitempty,email"`
}

func TestValidateBody_TagMessages(t *testing.T) {
	bad := "nope"
	cases := []struct {
		name string
		body bookBody
		want string
	}{
		{"required", bookBody{Year: 1}, "title is required"},
		{"max", bookBody{Title: "Dune Messiah", Year: 1}, "title must be at most 5 characters long"},
		{"gt", bookBody{Title: "Dune"}, "year must be greater than 0"},
		{"uuid", bookBody{Title: "Dune", Year: 1, AuthorID: &bad}, "author_id must be a valid UUID"},
		{"fallback", bookBody{Title: "Dune", Year: 1, Contact: "x"}, "contact failed on 'email'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBody(&tc.body)
			require.Error(t, err)
			assert.Contains(t, apperror.MessageOf(err), tc.want)
		})
	}
}

func TestFirstViolation_JSONErrors(t *testing.T) {
	var v struct {
		N int `json:"n"`
	}
	err := json.Unmarshal([]byte(`{"n":"x"}`), &v)
	assert.Equal(t, "n has the wrong type", FirstViolation(err))

	err = json.Unmarshal([]byte(`{`), &v)
	assert.Equal(t, "invalid json", FirstViolation(err))

	dec := json.NewDecoder(strings.NewReader(`{"m":1}`))
	dec.DisallowUnknownFields()
	err = dec.Decode(&v)
	assert.Equal(t, `unknown field "m"`, FirstViolation(err))

	assert.Equal(t, "invalid payload", FirstViolation(errors.New("boom")))
}

func TestValidateFileExtension(t *testing.T) {
	allowed := []string{"jpeg", "png"}

	assert.NoError(t, ValidateFileExtension("image/png", allowed))
	assert.NoError(t, ValidateFileExtension("IMAGE/JPEG; charset=binary", allowed))

	err := ValidateFileExtension("image/gif", allowed)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUnsupportedMediaType)
	assert.Equal(t, "Incorrect file extension. Supported file extensions: .JPEG, .PNG", apperror.MessageOf(err))

	assert.ErrorIs(t, ValidateFileExtension("", allowed), apperror.ErrUnsupportedMediaType)
}
