// Package topics holds the classified archive of briefing subjects an agent
// can pick from.
package topics

import (
	"strings"

	"bureau/pkg/domain"
)

var catalog = []domain.Topic{
	{ID: 1, Title: "Birds Are Government Surveillance Drones", Teaser: "Ever seen a baby pigeon? Exactly. They're built in a facility in Nevada.", Absurdity: 3, Difficulty: domain.DifficultyBeginner},
	{ID: 2, Title: "The Moon Is a Hologram Projected From Area 51", Teaser: "NASA's biggest budget line item: projector bulbs.", Absurdity: 5, Difficulty: domain.DifficultyDeepState},
	{ID: 3, Title: "Finland Does Not Exist", Teaser: "A fishing-rights cover story between Sweden and Russia. 'Finns' are in on it.", Absurdity: 5, Difficulty: domain.DifficultyDeepState},
	{ID: 4, Title: "Big Lamp Invented Darkness to Sell Light Bulbs", Teaser: "Before 1879 nobody had ever seen the dark. Wake up.", Absurdity: 4, Difficulty: domain.DifficultyOperative},
	{ID: 5, Title: "Garden Gnomes Report to a Central Authority", Teaser: "They rotate positions at night. Someone is collating that intel.", Absurdity: 3, Difficulty: domain.DifficultyBeginner},
	{ID: 6, Title: "Moon Landing Was Filmed in a Parking Garage", Teaser: "Level B2, next to the vending machines. The flag ripples because of the AC.", Absurdity: 2, Difficulty: domain.DifficultyBeginner},
	{ID: 7, Title: "Shopping Carts Have a Union and It's Winning", Teaser: "Why else would they all pull to the left? Coordinated action.", Absurdity: 3, Difficulty: domain.DifficultyOperative},
	{ID: 8, Title: "Clouds Are Rendered On Demand to Save Bandwidth", Teaser: "Overcast days are server maintenance windows.", Absurdity: 4, Difficulty: domain.DifficultyOperative},
	{ID: 9, Title: "The Bermuda Triangle Is Just Bad at Paperwork", Teaser: "Nothing vanishes. The filing backlog is forty years deep.", Absurdity: 2, Difficulty: domain.DifficultyBeginner},
	{ID: 10, Title: "Time Zones Were Invented to Hide the Second Sun", Teaser: "Why would the sky need 24 schedules? Think about it.", Absurdity: 5, Difficulty: domain.DifficultyDeepState},
}

// List returns catalog entries matching the optional difficulty and search
// filters. An empty difficulty or query matches everything.
func List(difficulty domain.Difficulty, query string) []domain.Topic {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Topic, 0, len(catalog))
	for _, t := range catalog {
		if difficulty != "" && t.Difficulty != difficulty {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Teaser), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Get returns the catalog entry with the given id.
func Get(id int) (domain.Topic, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Topic{}, false
}
