package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vlr-scraper/internal/domain"
)

func cleanRecord() *domain.MatchRecord {
	return &domain.MatchRecord{
		MatchID: "378662",
		Event:   domain.EventMeta{Name: "Champions", Stage: "Playoffs"},
		Team1:   domain.TeamRef{Name: "Sentinels"},
		Team2:   domain.TeamRef{Name: "Fnatic"},
		Maps: []domain.MapRecord{{
			MapName: "Ascent",
			PlayerStats: map[string][]domain.PlayerStatRecord{
				"Sentinels": {{PlayerName: "TenZ", Agent: "Jett"}},
			},
		}},
	}
}

func TestPartiallyDefaulted(t *testing.T) {
	assert.False(t, partiallyDefaulted(cleanRecord()))

	rec := cleanRecord()
	rec.Event.Name = "Unknown Event"
	assert.True(t, partiallyDefaulted(rec))

	rec = cleanRecord()
	rec.Team2.Name = "Team 2"
	assert.True(t, partiallyDefaulted(rec))

	rec = cleanRecord()
	rec.Maps[0].MapName = "Map 1"
	assert.True(t, partiallyDefaulted(rec))

	rec = cleanRecord()
	rec.Maps[0].PlayerStats["Sentinels"][0].PlayerName = "Player 1"
	assert.True(t, partiallyDefaulted(rec))

	rec = cleanRecord()
	rec.Maps[0].PlayerStats["Sentinels"][0].Agent = "Unknown"
	assert.True(t, partiallyDefaulted(rec))
}
