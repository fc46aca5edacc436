// internal/models/catalog.go
package models

type Category struct {
	ID     int64  `json:"id" gorm:"primary_key"`
	Name   string `json:"name" gorm:"size:100;not null"`
	Active bool   `json:"active" gorm:"default:true"`

	Items []CatalogItem `json:"items,omitempty" gorm:"foreignKey:CategoryID"`
}

type CatalogItem struct {
	ID         int64  `json:"id" gorm:"primary_key"`
	CategoryID int64  `json:"category_id" gorm:"not null;index"`
	Name       string `json:"name" gorm:"size:100;not null"`
	Active     bool   `json:"active" gorm:"default:true"`
}

type Region struct {
	ID   int64  `json:"id" gorm:"primary_key"`
	Name string `json:"name" gorm:"size:100;not null"`

	Villages []Village `json:"villages,omitempty" gorm:"foreignKey:RegionID"`
}

type Village struct {
	ID       int64  `json:"id" gorm:"primary_key"`
	RegionID int64  `json:"region_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"size:100;not null"`
}
