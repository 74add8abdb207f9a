package navigation

import "playday/pkg/model"

type Link struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

var (
	LinkFields    = Link{Name: "fields", Path: "/fields"}
	LinkMyFields  = Link{Name: "my_fields", Path: "/my-fields"}
	LinkGames     = Link{Name: "games", Path: "/games"}
	LinkMyProfile = Link{Name: "my_profile", Path: "/my-profile"}
)

// Policy decides which top-level links a caller sees.
type Policy struct {
	// OwnerSeesGames shows the games link to field owners.
	OwnerSeesGames bool
}

// Links returns the visible links in display order. The role is ignored for
// anonymous callers.
func (p Policy) Links(authenticated bool, role model.Role) []Link {
	if !authenticated {
		role = ""
	}
	owner := role == model.RoleOwner

	links := make([]Link, 0, 3)
	if owner {
		links = append(links, LinkMyFields)
	} else {
		links = append(links, LinkFields)
	}
	if !owner || p.OwnerSeesGames {
		links = append(links, LinkGames)
	}
	if authenticated {
		links = append(links, LinkMyProfile)
	}
	return links
}
