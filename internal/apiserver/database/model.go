package database

import (
	"time"

	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
)

// Role represents the privilege tier of a user
type Role string

const (
	// RoleAdministrator has full access, including city, menu type and log administration
	RoleAdministrator Role = "administrator"
	// RoleGlobalManager manages users and content across every city
	RoleGlobalManager Role = "global_manager"
	// RoleLocalManager manages content within its assigned cities
	RoleLocalManager Role = "local_manager"
	// RoleUser is a regular portal user
	RoleUser Role = "user"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleGlobalManager, RoleLocalManager, RoleUser:
		return true
	}
	return false
}

// Elevated reports whether r bypasses city scoping.
func (r Role) Elevated() bool {
	return r == RoleAdministrator || r == RoleGlobalManager
}

// CanManage reports whether an actor with role r may manage an account
// with role target. A global manager may not touch administrator or
// global manager accounts; an administrator may touch anyone.
func (r Role) CanManage(target Role) bool {
	if r == RoleAdministrator {
		return true
	}
	if r == RoleGlobalManager {
		return !target.Elevated()
	}
	return false
}

// User represents a portal account
type User struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name              string     `json:"name" gorm:"type:varchar(255);not null"`
	Email             string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	CPF               string     `json:"cpf" gorm:"type:varchar(11);uniqueIndex;not null"`
	Password          string     `json:"-" gorm:"not null"`
	Role              Role       `json:"role" gorm:"type:varchar(20);not null"`
	Cities            []City     `json:"cities" gorm:"many2many:user_cities"`
	Address           string     `json:"address,omitempty" gorm:"type:text"`
	Phone             string     `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Photo             string     `json:"photo,omitempty" gorm:"type:text"`
	ResetToken        string     `json:"-" gorm:"type:text"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// CityIDs returns the ids of the user's assigned cities.
func (u *User) CityIDs() []string {
	ids := make([]string, len(u.Cities))
	for i, c := range u.Cities {
		ids[i] = c.ID
	}
	return ids
}

// City represents a city served by the portal
type City struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MenuType represents a navigation category
type MenuType struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Menu represents a navigation item belonging to a city
type Menu struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CityID    string    `json:"cityId" gorm:"type:varchar(36);not null;index"`
	City      *City     `json:"city,omitempty" gorm:"foreignKey:CityID"`
	TypeID    string    `json:"typeId" gorm:"type:varchar(36);not null;index"`
	Type      *MenuType `json:"type,omitempty" gorm:"foreignKey:TypeID"`
	Item      string    `json:"item" gorm:"type:varchar(255);not null"`
	Title     string    `json:"title" gorm:"type:varchar(255)"`
	Text      string    `json:"text" gorm:"type:text"`
	Link      string    `json:"link" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Announcement represents a city-scoped announcement
type Announcement struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title      string     `json:"title" gorm:"type:varchar(255);not null"`
	Message    string     `json:"message" gorm:"type:text;not null"`
	Background string     `json:"background" gorm:"type:varchar(30);not null"`
	TextColor  string     `json:"textColor" gorm:"type:varchar(30);not null"`
	Icon       string     `json:"icon" gorm:"type:varchar(100);not null"`
	Date       *time.Time `json:"date,omitempty"`
	IsPublic   bool       `json:"isPublic" gorm:"not null;default:false"`
	CityID     string     `json:"cityId" gorm:"type:varchar(36);not null;index"`
	CreatedBy  string     `json:"createdBy" gorm:"type:varchar(36);not null;index"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// AuditEntry is an append-only record of a security or business relevant action
type AuditEntry struct {
	ID        uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	ActorID   *string     `json:"actorId" gorm:"type:varchar(36);index"`
	ActorName string      `json:"actorName" gorm:"type:varchar(255);not null"`
	Action    cnst.Action `json:"action" gorm:"type:varchar(50);not null;index"`
	Module    cnst.Module `json:"module" gorm:"type:varchar(30);not null;index"`
	Details   string      `json:"details" gorm:"type:text"`
	Timestamp time.Time   `json:"timestamp" gorm:"index"`
}

// Scope narrows reads to the cities visible to the caller. All=true
// means unrestricted visibility; All=false with an empty CityIDs set
// matches nothing, never the unfiltered set.
type Scope struct {
	All     bool
	CityIDs []string
	UserID  string
}
