package model

// AuditEntry is one admin request captured by the operation log pipeline.
type AuditEntry struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	ActionName string `gorm:"column:action_name;size:120" json:"action_name"`
	UserID     int64  `gorm:"column:user_id;index" json:"user_id"`
	AddTime    int64  `gorm:"column:add_time;index" json:"add_time"`
	Data       string `gorm:"column:data" json:"data"`
	URL        string `gorm:"column:url;size:200" json:"url"`
	Method     string `gorm:"column:method;size:10" json:"method"`
	Status     int    `gorm:"column:status" json:"status"`
	LatencyMs  int64  `gorm:"column:latency_ms" json:"latency_ms"`
	IP         string `gorm:"column:ip;size:64" json:"ip"`
	TraceID    string `gorm:"column:trace_id;size:64" json:"trace_id"`
}

func (AuditEntry) TableName() string { return "admin_audit_log" }

// All lists every persisted model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&TeamMember{}, &ContentBlock{}, &Section{}, &SectionNews{},
		&Group{}, &ScheduleItem{}, &Application{},
		&Enrollment{}, &Payment{},
		&BlogPost{}, &BlogSettings{},
		&GalleryItem{}, &GalleryCollage{},
		&SupportConversation{}, &SupportMessage{},
		&TelegramLink{}, &TelegramSettings{},
		&User{}, &AuditEntry{},
	}
}
