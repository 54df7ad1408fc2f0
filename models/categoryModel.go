package models

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Image       string `json:"image"`
}

type NewCategory struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"omitempty,url"`
}

type CategoryPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Description *string `json:"description"`
	Image       *string `json:"image" binding:"omitempty,url"`
}

func (n NewCategory) Category() Category {
	return Category{Name: n.Name, Description: n.Description, Image: n.Image}
}

func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
}
