package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemDisplayNameFallbacks(t *testing.T) {
	desc := "Black North Face backpack"
	empty := ""

	assert.Equal(t, desc, Item{Description: &desc, Category: "bags"}.DisplayName())
	assert.Equal(t, "electronics item", Item{Description: &empty, Category: "electronics"}.DisplayName())
	assert.Equal(t, "the item", Item{}.DisplayName())
}

func TestActivityLogTableName(t *testing.T) {
	assert.Equal(t, "activity_log", ActivityLog{}.TableName())
}
