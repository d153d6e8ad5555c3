package org

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	o := New("Grace Chapel", "GRACE")
	assert.NotEqual(t, o.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "grace", o.Slug)
	assert.Equal(t, "free", o.Plan)
	assert.True(t, o.IsActive)
	assert.False(t, o.IsDemo)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
}

func TestIsReservedSlug(t *testing.T) {
	for _, slug := range []string{"www", "api", "app", "admin", "auth", "billing", "help", "support", "ADMIN"} {
		assert.True(t, IsReservedSlug(slug), slug)
	}
	assert.False(t, IsReservedSlug("grace"))
	assert.False(t, IsReservedSlug(""))
}
