package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Toleubekov/auction-system/models"
)

func TestIsValidStatusTransition(t *testing.T) {
	tests := []struct {
		from models.CompetitionStatus
		to   models.CompetitionStatus
		want bool
	}{
		{models.CompetitionSoon, models.CompetitionRegistration, true},
		{models.CompetitionSoon, models.CompetitionCanceled, true},
		{models.CompetitionSoon, models.CompetitionActive, false},
		{models.CompetitionSoon, models.CompetitionCompleted, false},
		{models.CompetitionRegistration, models.CompetitionActive, true},
		{models.CompetitionRegistration, models.CompetitionCanceled, true},
		{models.CompetitionRegistration, models.CompetitionSoon, false},
		{models.CompetitionActive, models.CompetitionCompleted, true},
		{models.CompetitionActive, models.CompetitionCanceled, true},
		{models.CompetitionActive, models.CompetitionRegistration, false},
		{models.CompetitionCompleted, models.CompetitionCanceled, false},
		{models.CompetitionCompleted, models.CompetitionActive, false},
		{models.CompetitionCanceled, models.CompetitionActive, false},
		// Повтор того же статуса разрешён.
		{models.CompetitionActive, models.CompetitionActive, true},
		{models.CompetitionCompleted, models.CompetitionCompleted, true},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			require.Equal(t, tc.want, isValidStatusTransition(tc.from, tc.to))
		})
	}
}

func TestIsValidCompetitionStatus(t *testing.T) {
	for _, status := range []models.CompetitionStatus{
		models.CompetitionSoon, models.CompetitionRegistration, models.CompetitionActive,
		models.CompetitionCompleted, models.CompetitionCanceled,
	} {
		require.True(t, isValidCompetitionStatus(status))
	}
	require.False(t, isValidCompetitionStatus(models.CompetitionStatus("archived")))
	require.False(t, isValidCompetitionStatus(""))
}
