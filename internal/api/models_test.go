package api

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
	"github.com/phrazzld/cityinfo-api/internal/domain"
)

func TestPointOfInterestRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		req    any
		fields map[string][]string
	}{
		{
			name: "valid creation",
			req:  PointOfInterestForCreation{Name: "Louvre", Description: domain.StringPtr("Museum.")},
		},
		{
			name:   "missing name",
			req:    PointOfInterestForCreation{},
			fields: map[string][]string{"name": {nameRequiredMessage}},
		},
		{
			name:   "blank name",
			req:    PointOfInterestForUpdate{Name: " \t "},
			fields: map[string][]string{"name": {nameRequiredMessage}},
		},
		{
			name: "both fields too long",
			req: PointOfInterestForUpdate{
				Name:        strings.Repeat("n", domain.MaxNameLength+1),
				Description: domain.StringPtr(strings.Repeat("d", domain.MaxDescriptionLength+1)),
			},
			fields: map[string][]string{
				"name":        {"The field name must be a string with a maximum length of '50'."},
				"description": {"The field description must be a string with a maximum length of '200'."},
			},
		},
		{
			name: "limits are inclusive",
			req: PointOfInterestForCreation{
				Name:        strings.Repeat("n", domain.MaxNameLength),
				Description: domain.StringPtr(strings.Repeat("d", domain.MaxDescriptionLength)),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := shared.ValidateRequest(tc.req)
			if tc.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tc.fields, verr.Fields)
		})
	}
}
