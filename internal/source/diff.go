package source

import (
	"github.com/julianstephens/waterme/internal/diff"
	"github.com/julianstephens/waterme/internal/models"
)

// diffReminders compares two snapshots. A reminder whose owning vessel was
// renamed or got a new icon counts as modified.
func diffReminders(old, new []models.Reminder, oldVessels, newVessels map[string]models.Vessel) diff.Result {
	return diff.IDs(ids(old), ids(new), func(i, j int) bool {
		return !old[i].Equal(new[j]) || vesselChanged(oldVessels, newVessels, new[j].VesselID)
	})
}

func vesselChanged(old, new map[string]models.Vessel, id string) bool {
	a, okA := old[id]
	b, okB := new[id]
	if okA != okB {
		return true
	}
	return a.Name() != b.Name() || a.Icon != b.Icon
}

func ids(rs []models.Reminder) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
