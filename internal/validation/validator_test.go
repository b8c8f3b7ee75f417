package validation_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
	"github.com/shelfnotes/shelfnotes-server/internal/validation"
)

type TestRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
	Rating   int    `json:"rating" validate:"gte=1,lte=5"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(TestRequest{Email: "alice@example.com", Password: "secret1", Rating: 4})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       TestRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing email",
			req:       TestRequest{Password: "secret1", Rating: 3},
			wantField: "email",
			wantMsg:   "is required",
		},
		{
			name:      "invalid email",
			req:       TestRequest{Email: "not-an-email", Password: "secret1", Rating: 3},
			wantField: "email",
			wantMsg:   "must be a valid email address",
		},
		{
			name:      "password too short",
			req:       TestRequest{Email: "alice@example.com", Password: "abc", Rating: 3},
			wantField: "password",
			wantMsg:   "must be at least 6 characters",
		},
		{
			name:      "password too long",
			req:       TestRequest{Email: "alice@example.com", Password: strings.Repeat("a", 1025), Rating: 3},
			wantField: "password",
			wantMsg:   "must not exceed 1024 characters",
		},
		{
			name:      "rating above range",
			req:       TestRequest{Email: "alice@example.com", Password: "secret1", Rating: 6},
			wantField: "rating",
			wantMsg:   "must be less than or equal to 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, domainerrors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.Equal(t, tt.wantField+" "+tt.wantMsg, domainErr.Message)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

