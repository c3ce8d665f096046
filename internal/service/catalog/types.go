package catalog

import "time"

// Skill is a canonical skill name. Two skills never differ only by case;
// the stored casing is whichever spelling was persisted first.
type Skill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
