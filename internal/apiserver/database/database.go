package database

import (
	"context"
	"time"
)

// AuditFilter narrows an audit log query. Zero fields are ignored.
type AuditFilter struct {
	// From and To bound the entry timestamp (inclusive).
	From *time.Time
	To   *time.Time
	// ActorName is matched as a case-insensitive substring.
	ActorName string
	// Action and Module are matched exactly.
	Action string
	Module string

	Page     int
	PageSize int
}

// Database defines the persistence operations of the portal API.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn inside a transaction carried by the context.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateUser persists a new user and its city assignments.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID fetches a user with its assigned cities.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByIdentifier fetches a user whose email or CPF equals identifier.
	GetUserByIdentifier(ctx context.Context, identifier string) (*User, error)

	// GetUserByResetToken fetches the user holding the given recovery token.
	GetUserByResetToken(ctx context.Context, token string) (*User, error)

	// FindConflictingUser returns a user other than excludeID holding the
	// given email or CPF, or nil when both are free.
	FindConflictingUser(ctx context.Context, email, cpf, excludeID string) (*User, error)

	// ListUsers lists all users with their assigned cities.
	ListUsers(ctx context.Context) ([]*User, error)

	// UpdateUser persists changes to a user record.
	UpdateUser(ctx context.Context, user *User) error

	// ReplaceUserCities replaces the user's city assignments.
	ReplaceUserCities(ctx context.Context, userID string, cityIDs []string) error

	// DeleteUser removes a user and its city assignments.
	DeleteUser(ctx context.Context, id string) error

	// CreateCity persists a new city.
	CreateCity(ctx context.Context, city *City) error

	// GetCityByID fetches a city.
	GetCityByID(ctx context.Context, id string) (*City, error)

	// ListCities lists the cities visible under scope, sorted by name.
	ListCities(ctx context.Context, scope Scope) ([]*City, error)

	// UpdateCity persists changes to a city.
	UpdateCity(ctx context.Context, city *City) error

	// DeleteCity removes a city.
	DeleteCity(ctx context.Context, id string) error

	// CreateMenuType persists a new menu type.
	CreateMenuType(ctx context.Context, mt *MenuType) error

	// GetMenuTypeByID fetches a menu type.
	GetMenuTypeByID(ctx context.Context, id string) (*MenuType, error)

	// ListMenuTypes lists all menu types, sorted by name.
	ListMenuTypes(ctx context.Context) ([]*MenuType, error)

	// UpdateMenuType persists changes to a menu type.
	UpdateMenuType(ctx context.Context, mt *MenuType) error

	// DeleteMenuType removes a menu type.
	DeleteMenuType(ctx context.Context, id string) error

	// CreateMenu persists a new menu item.
	CreateMenu(ctx context.Context, menu *Menu) error

	// GetMenuByID fetches a menu item with its city and type populated.
	GetMenuByID(ctx context.Context, id string) (*Menu, error)

	// ListMenus lists the menu items visible under scope.
	ListMenus(ctx context.Context, scope Scope) ([]*Menu, error)

	// UpdateMenu persists changes to a menu item.
	UpdateMenu(ctx context.Context, menu *Menu) error

	// DeleteMenu removes a menu item.
	DeleteMenu(ctx context.Context, id string) error

	// CreateAnnouncement persists a new announcement.
	CreateAnnouncement(ctx context.Context, a *Announcement) error

	// GetAnnouncementByID fetches an announcement.
	GetAnnouncementByID(ctx context.Context, id string) (*Announcement, error)

	// ListAnnouncements lists the announcements visible under scope,
	// newest-first. A scoped caller sees announcements of its assigned
	// cities, public ones, and its own.
	ListAnnouncements(ctx context.Context, scope Scope) ([]*Announcement, error)

	// UpdateAnnouncement persists changes to an announcement.
	UpdateAnnouncement(ctx context.Context, a *Announcement) error

	// DeleteAnnouncement removes an announcement.
	DeleteAnnouncement(ctx context.Context, id string) error

	// InsertAuditEntry appends an audit entry.
	InsertAuditEntry(ctx context.Context, entry *AuditEntry) error

	// QueryAuditEntries returns the page of entries matched by filter,
	// newest-first, along with the total match count.
	QueryAuditEntries(ctx context.Context, filter AuditFilter) ([]*AuditEntry, int64, error)

	// DeleteListingEntries removes every entry recorded with the listing
	// action and returns how many were deleted.
	DeleteListingEntries(ctx context.Context) (int64, error)
}
