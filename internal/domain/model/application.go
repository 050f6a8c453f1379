package model

const (
	ApplicationNew       = "new"
	ApplicationContacted = "contacted"
	ApplicationAssigned  = "assigned"
	ApplicationRejected  = "rejected"
)

// Application is a lead from the trial form or an admin-entered request.
type Application struct {
	Base
	Name              string  `gorm:"size:120" json:"name" binding:"required"`
	Phone             string  `gorm:"size:40" json:"phone" binding:"required"`
	Email             *string `gorm:"size:190" json:"email" binding:"omitempty,email"`
	Age               *int    `json:"age" binding:"omitempty,gte=0,lte=120"`
	Style             string  `gorm:"size:80" json:"style"`
	Comment           *string `json:"comment"`
	Source            string  `gorm:"size:40" json:"source"`
	Status            string  `gorm:"size:20;index" json:"status" binding:"omitempty,oneof=new contacted assigned rejected"`
	AssignedGroupID   *int64  `gorm:"index" json:"assigned_group_id"`
	AssignedGroupName *string `gorm:"size:120" json:"assigned_group_name"`
}

func (Application) TableName() string { return "applications" }
