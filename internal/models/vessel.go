package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/waterme/internal/constants"
)

// IconKind tells whether a vessel icon is an emoji or an image held in the icon store.
type IconKind string

const (
	IconEmoji IconKind = "emoji"
	IconImage IconKind = "image"
)

type VesselIcon struct {
	Kind  IconKind `json:"kind"`
	Emoji string   `json:"emoji,omitempty"`
}

type Vessel struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name,omitempty"`
	Icon        VesselIcon `json:"icon"`
	Kind        string     `json:"kind"`
	ReminderIDs []string   `json:"reminder_ids"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewVessel returns a plant vessel with a fresh ID.
func NewVessel(name string) Vessel {
	return Vessel{
		ID:          uuid.New().String(),
		DisplayName: name,
		Icon:        VesselIcon{Kind: IconEmoji, Emoji: "🌱"},
		Kind:        constants.DefaultVesselKind,
		CreatedAt:   time.Now(),
	}
}

// Name returns the display name, falling back to the untitled placeholder.
func (v Vessel) Name() string {
	if v.DisplayName == "" {
		return constants.UntitledVesselName
	}
	return v.DisplayName
}

func (v *Vessel) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vessel id cannot be empty")
	}
	switch v.Icon.Kind {
	case IconEmoji, IconImage:
	default:
		return fmt.Errorf("unknown icon kind %q", v.Icon.Kind)
	}
	return nil
}
