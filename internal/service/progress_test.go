package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecklistProgress(t *testing.T) {
	assert.Equal(t, 0, ChecklistProgress(0, 0))
	assert.Equal(t, 0, ChecklistProgress(5, 0))
	assert.Equal(t, 100, ChecklistProgress(5, 5))
	// integer truncation, never rounding up
	assert.Equal(t, 42, ChecklistProgress(7, 3))
	assert.Equal(t, 66, ChecklistProgress(3, 2))
}

func TestSignoffProgress(t *testing.T) {
	assert.Equal(t, 0, SignoffProgress(0, 0))
	assert.Equal(t, 50, SignoffProgress(2, 1))
	assert.Equal(t, 100, SignoffProgress(4, 4))
}
