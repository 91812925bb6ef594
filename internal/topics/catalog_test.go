package topics

import (
	"testing"

	"bureau/pkg/domain"
)

func TestListUnfiltered(t *testing.T) {
	all := List("", "")
	if len(all) == 0 {
		t.Fatalf("catalog is empty")
	}
	seen := make(map[int]struct{}, len(all))
	for _, topic := range all {
		if _, dup := seen[topic.ID]; dup {
			t.Fatalf("duplicate topic id %d", topic.ID)
		}
		seen[topic.ID] = struct{}{}
		if topic.Absurdity < 1 || topic.Absurdity > 5 {
			t.Fatalf("topic %d absurdity %d out of range", topic.ID, topic.Absurdity)
		}
	}
}

func TestListByDifficulty(t *testing.T) {
	for _, d := range []domain.Difficulty{domain.DifficultyBeginner, domain.DifficultyOperative, domain.DifficultyDeepState} {
		for _, topic := range List(d, "") {
			if topic.Difficulty != d {
				t.Fatalf("filter %q returned topic with difficulty %q", d, topic.Difficulty)
			}
		}
	}
}

func TestListSearch(t *testing.T) {
	res := List("", "parking garage")
	if len(res) != 1 || res[0].ID != 6 {
		t.Fatalf("search result = %+v", res)
	}
	if len(List("", "no such topic anywhere")) != 0 {
		t.Fatalf("bogus query matched")
	}
}

func TestGet(t *testing.T) {
	topic, ok := Get(6)
	if !ok || topic.Title != "Moon Landing Was Filmed in a Parking Garage" {
		t.Fatalf("Get(6) = %+v, %v", topic, ok)
	}
	if _, ok := Get(999); ok {
		t.Fatalf("unknown id found")
	}
}
