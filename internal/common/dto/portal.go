package dto

import "time"

// CityRequest creates or updates a city
type CityRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// MenuTypeRequest creates or updates a menu type
type MenuTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// MenuRequest creates or updates a menu
type MenuRequest struct {
	CityID string `json:"cityId" binding:"required"`
	TypeID string `json:"typeId" binding:"required"`
	Item   string `json:"item" binding:"required"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Link   string `json:"link"`
}

// AnnouncementRequest creates or updates an announcement
type AnnouncementRequest struct {
	Title      string     `json:"title" binding:"required"`
	Message    string     `json:"message" binding:"required"`
	Background string     `json:"background" binding:"required"`
	TextColor  string     `json:"textColor" binding:"required"`
	Icon       string     `json:"icon" binding:"required"`
	Date       *time.Time `json:"date"`
	IsPublic   bool       `json:"isPublic"`
	CityID     string     `json:"cityId"`
}

// CreateLogRequest records a client-side audit entry
type CreateLogRequest struct {
	Action  string `json:"action" binding:"required"`
	Module  string `json:"module" binding:"required"`
	Details string `json:"details"`
}
