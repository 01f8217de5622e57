package shell

import (
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/resource"
)

// PanelKind distinguishes mounted screens from informational panels.
type PanelKind string

const (
	PanelScreen     PanelKind = "screen"
	PanelOverview   PanelKind = "overview"
	PanelProfile    PanelKind = "profile"
	PanelComingSoon PanelKind = "coming_soon"
)

// Panel is one menu entry of the dashboard.
type Panel struct {
	Kind     PanelKind `json:"kind"`
	Title    string    `json:"title"`
	Registry string    `json:"registry,omitempty"`
	ReadOnly bool      `json:"readOnly,omitempty"`
}

// Group is a labelled menu section.
type Group struct {
	Title  string  `json:"title"`
	Panels []Panel `json:"panels"`
}

// Composition is the full dashboard layout for one role.
type Composition struct {
	Role   models.Role `json:"role"`
	Groups []Group     `json:"groups"`
}

// Compose selects exactly one of three dashboard compositions for the
// resolved role. The menu is navigation convenience only; the role gate
// middleware and the upstream API both enforce authorization on every action.
func Compose(role models.Role) Composition {
	switch role {
	case models.RoleAdmin:
		return adminComposition()
	case models.RoleManager:
		return managerComposition()
	default:
		return userComposition()
	}
}

// Allowed reports whether the role's composition mounts the given registry.
func Allowed(role models.Role, registry string) bool {
	for _, group := range Compose(role).Groups {
		for _, panel := range group.Panels {
			if panel.Kind == PanelScreen && panel.Registry == registry {
				return true
			}
		}
	}
	return false
}

func adminComposition() Composition {
	groups := []Group{
		{Title: "Locations", Panels: screenPanels(resource.LocationRegistries())},
		{Title: "Administration", Panels: screenPanels(resource.AdministrationRegistries())},
		{Title: "Documents", Panels: screenPanels(resource.DocumentRegistries())},
		{Title: "Coming Soon", Panels: []Panel{
			{Kind: PanelComingSoon, Title: "Archive"},
			{Kind: PanelComingSoon, Title: "Expiry Tracking"},
			{Kind: PanelComingSoon, Title: "Active Documents"},
		}},
	}
	return Composition{Role: models.RoleAdmin, Groups: groups}
}

// managerComposition is deliberately narrower than the admin one: locations
// and documents, no account or role administration.
func managerComposition() Composition {
	groups := []Group{
		{Title: "Locations", Panels: screenPanels(resource.LocationRegistries())},
		{Title: "Documents", Panels: screenPanels(resource.DocumentRegistries())},
	}
	return Composition{Role: models.RoleManager, Groups: groups}
}

func userComposition() Composition {
	documents := screenPanels(resource.DocumentRegistries())
	for i := range documents {
		documents[i].ReadOnly = true
	}
	groups := []Group{
		{Title: "Overview", Panels: []Panel{{Kind: PanelOverview, Title: "Overview"}}},
		{Title: "My Documents", Panels: documents},
		{Title: "Profile", Panels: []Panel{{Kind: PanelProfile, Title: "My Profile", ReadOnly: true}}},
	}
	return Composition{Role: models.RoleUser, Groups: groups}
}

func screenPanels(descriptors []resource.Descriptor) []Panel {
	panels := make([]Panel, 0, len(descriptors))
	for _, desc := range descriptors {
		panels = append(panels, Panel{Kind: PanelScreen, Title: desc.Title, Registry: desc.Name})
	}
	return panels
}
