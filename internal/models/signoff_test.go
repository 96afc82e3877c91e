package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSignoffs(t *testing.T) {
	tests := []struct {
		name     string
		statuses []SignOffStatus
		want     SignOffResolution
	}{
		{"no signoffs", nil, ResolutionPending},
		{"all pending", []SignOffStatus{SignOffPending, SignOffPending}, ResolutionPending},
		{"pending outranks rejection", []SignOffStatus{SignOffRejected, SignOffPending}, ResolutionPending},
		{"pending outranks approval", []SignOffStatus{SignOffApproved, SignOffPending}, ResolutionPending},
		{"rejection outranks approval", []SignOffStatus{SignOffApproved, SignOffRejected}, ResolutionHasRejection},
		{"single rejection", []SignOffStatus{SignOffRejected}, ResolutionHasRejection},
		{"all approved", []SignOffStatus{SignOffApproved, SignOffApproved, SignOffApproved}, ResolutionAllApproved},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveSignoffs(tc.statuses))
		})
	}
}

func TestCaseStatusTerminal(t *testing.T) {
	assert.True(t, CaseCompleted.Terminal())
	assert.True(t, CaseCancelled.Terminal())
	assert.False(t, CaseChecklistPending.Terminal())
	assert.False(t, CaseSignoffPending.Terminal())
}

func TestCaseStatusValid(t *testing.T) {
	assert.True(t, CaseInitiated.Valid())
	assert.True(t, CaseSignoffPending.Valid())
	assert.False(t, CaseStatus("archived").Valid())
}
