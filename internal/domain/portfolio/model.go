package portfolio

import (
	"errors"
	"strings"
	"time"
)

// Item is a showcase entry rendered on the intake page.
type Item struct {
	ID          uint      `gorm:"primaryKey" json:"id,omitempty"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Category    string    `gorm:"type:varchar(100);not null" json:"category"`
	URL         string    `gorm:"column:url;not null" json:"url"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func (Item) TableName() string { return "portfolio_items" }

func (it Item) Validate() error {
	if strings.TrimSpace(it.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(it.URL) == "" {
		return errors.New("url is required")
	}
	return nil
}

// Showcase is shown when the store has nothing to offer (empty or down).
func Showcase() []Item {
	return []Item{
		{
			Title:       "Kuriftu Resort & Spa",
			Category:    "Hotel & Tourism",
			URL:         "https://kurifturesorts.com/",
			Description: "Luxury resort booking platform with immersive gallery.",
		},
		{
			Title:       "Tomoca Coffee",
			Category:    "E-commerce",
			URL:         "https://www.tomocacoffee.com/",
			Description: "Global coffee shop chain with online ordering system.",
		},
		{
			Title:       "Zeleman Productions",
			Category:    "Creative Agency",
			URL:         "https://zeleman.com/",
			Description: "Interactive portfolio for a leading media production house.",
		},
	}
}

// OrFallback returns items, or the built-in showcase when items is empty.
func OrFallback(items []Item) []Item {
	if len(items) == 0 {
		return Showcase()
	}
	return items
}
