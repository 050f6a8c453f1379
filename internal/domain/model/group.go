package model

// Group is a training group students are enrolled into.
type Group struct {
	Base
	Name          string  `gorm:"size:120" json:"name" binding:"required"`
	Style         string  `gorm:"size:80;index" json:"style"`
	Level         string  `gorm:"size:60" json:"level"`
	DayOfWeek     string  `gorm:"size:40" json:"day_of_week"`
	Time          string  `gorm:"size:20" json:"time"`
	AgeMin        *int    `json:"age_min" binding:"omitempty,gte=0"`
	AgeMax        *int    `json:"age_max" binding:"omitempty,gte=0"`
	MaxStudents   int     `json:"max_students" binding:"gte=0"`
	BillingAmount float64 `gorm:"type:numeric(12,2)" json:"billing_amount" binding:"gte=0"`
	IsActive      bool    `json:"is_active"`
}

func (Group) TableName() string { return "groups" }

// AcceptsAge reports whether age fits the group's range; unknown bounds accept.
func (g *Group) AcceptsAge(age *int) bool {
	if age == nil {
		return true
	}
	if g.AgeMin != nil && *age < *g.AgeMin {
		return false
	}
	if g.AgeMax != nil && *age > *g.AgeMax {
		return false
	}
	return true
}

// ScheduleItem is one weekly slot; GroupName caches the referenced group's name.
type ScheduleItem struct {
	Base
	GroupID   *int64 `gorm:"index" json:"group_id"`
	GroupName string `gorm:"size:120" json:"group_name"`
	Title     string `gorm:"size:255" json:"title" binding:"required"`
	DayOfWeek string `gorm:"size:40" json:"day_of_week" binding:"required"`
	StartTime string `gorm:"size:20" json:"start_time" binding:"required"`
	EndTime   string `gorm:"size:20" json:"end_time"`
	Room      string `gorm:"size:60" json:"room"`
	Teacher   string `gorm:"size:120" json:"teacher"`
	IsActive  bool   `json:"is_active"`
}

func (ScheduleItem) TableName() string { return "schedule_items" }
