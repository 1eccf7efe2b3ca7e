package models

import "time"

// DefaultLineupDuration is used when a lineup has no end timestamp.
const DefaultLineupDuration = 4 * time.Hour

// Event is the read-only catalog record a booking session refers to.
type Event struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Currency    string   `json:"currency"`
	LowPrice    float64  `json:"low_price"`
	HighPrice   float64  `json:"high_price"`
	Description string   `json:"description,omitempty"`
	Lineups     []Lineup `json:"lineups"`
}

// Lineup is a scheduled occurrence of an event.
type Lineup struct {
	ID           string            `json:"id"`
	StartDate    FloatingTime      `json:"start_date"`
	EndDate      *FloatingTime     `json:"end_date,omitempty"`
	Venue        Venue             `json:"venue"`
	Tiers        []Tier            `json:"tiers"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

type Venue struct {
	Name    string `json:"name"`
	MapLink string `json:"map_link,omitempty"`
}

// Tier is a ticket category with its own price within a lineup.
type Tier struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Lineup returns the lineup with the given id, or nil.
func (e *Event) Lineup(id string) *Lineup {
	for i := range e.Lineups {
		if e.Lineups[i].ID == id {
			return &e.Lineups[i]
		}
	}
	return nil
}

// Tier returns the tier with the given id, or nil.
func (l *Lineup) Tier(id string) *Tier {
	for i := range l.Tiers {
		if l.Tiers[i].ID == id {
			return &l.Tiers[i]
		}
	}
	return nil
}

// ResolveEnd returns the lineup end, falling back to start + DefaultLineupDuration.
func (l *Lineup) ResolveEnd() time.Time {
	if l.EndDate != nil && !l.EndDate.IsZero() {
		return l.EndDate.Time
	}
	return l.StartDate.Add(DefaultLineupDuration)
}
