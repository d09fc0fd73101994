package cnst

// Module represents the business area an audit entry belongs to
type Module string

const (
	// ModuleUsers covers account management
	ModuleUsers Module = "users"
	// ModuleCities covers city management
	ModuleCities Module = "cities"
	// ModuleMenus covers menu item management
	ModuleMenus Module = "menus"
	// ModuleMenuTypes covers menu type management
	ModuleMenuTypes Module = "menu-types"
	// ModuleAnnouncements covers announcement management
	ModuleAnnouncements Module = "announcements"
	// ModuleAccess covers authentication and authorization events
	ModuleAccess Module = "access"
	// ModuleLogs covers operations on the audit log itself
	ModuleLogs Module = "logs"
)

var modules = map[Module]struct{}{
	ModuleUsers:         {},
	ModuleCities:        {},
	ModuleMenus:         {},
	ModuleMenuTypes:     {},
	ModuleAnnouncements: {},
	ModuleAccess:        {},
	ModuleLogs:          {},
}

// Valid reports whether m is a known business module.
func (m Module) Valid() bool {
	_, ok := modules[m]
	return ok
}
