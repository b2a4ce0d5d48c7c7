// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
)

// NotAvailable 可选字段缺省值
const NotAvailable = "N/A"

// DateLayout 活动日期格式
const DateLayout = "2006-01-02"

// 活动形式
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
	ModeHybrid  = "hybrid"
)

// Event 俱乐部活动记录
type Event struct {
	ID                  int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID             string          `json:"event_id" gorm:"column:event_id;type:varchar(150);index"`
	SerialNo            int             `json:"serial_no" gorm:"column:serial_no;default:0"`
	Name                string          `json:"name_of_event" gorm:"column:name_of_event;type:text;not null"`
	Domain              string          `json:"event_domain" gorm:"column:event_domain;type:text"`
	Date                time.Time       `json:"date_of_event" gorm:"column:date_of_event;type:date;not null"`
	Time                string          `json:"time_of_event" gorm:"column:time_of_event;type:text"`
	FacultyCoordinators string          `json:"faculty_coordinators" gorm:"column:faculty_coordinators;type:text"`
	StudentCoordinators string          `json:"student_coordinators" gorm:"column:student_coordinators;type:text"`
	Venue               string          `json:"venue" gorm:"column:venue;type:text"`
	Mode                string          `json:"mode_of_event" gorm:"column:mode_of_event;type:text"`
	RegistrationFee     string          `json:"registration_fee" gorm:"column:registration_fee;type:text"`
	Speakers            string          `json:"speakers" gorm:"column:speakers;type:text"`
	Perks               string          `json:"perks" gorm:"column:perks;type:text"`
	Collaboration       string          `json:"collaboration" gorm:"column:collaboration;type:text"`
	Description         string          `json:"description_insights" gorm:"column:description_insights;type:text"`
	SearchText          string          `json:"search_text" gorm:"column:search_text;type:text"`
	Embedding           pgvector.Vector `json:"-" gorm:"column:embedding;type:vector(768)"`
}

// TableName 指定表名
func (Event) TableName() string {
	return "events"
}

// DateString 返回 YYYY-MM-DD 形式的日期
func (e *Event) DateString() string {
	return e.Date.Format(DateLayout)
}

// BuildSearchText 生成用于嵌入的检索文本
func (e *Event) BuildSearchText() string {
	domain := strings.TrimSpace(e.Domain)
	if domain == "" {
		domain = "General"
	}
	return fmt.Sprintf("Event: %s\nDomain: %s\nDescription: %s\nPerks: %s\nCollaboration: %s",
		e.Name, domain, e.Description, e.Perks, e.Collaboration)
}

// EventMatch 语义检索命中的活动摘要
type EventMatch struct {
	Name        string  `json:"name_of_event" gorm:"column:name_of_event"`
	Domain      string  `json:"event_domain" gorm:"column:event_domain"`
	Date        string  `json:"date_of_event" gorm:"column:date_of_event"`
	Time        string  `json:"time_of_event" gorm:"column:time_of_event"`
	Venue       string  `json:"venue" gorm:"column:venue"`
	Description string  `json:"description_insights" gorm:"column:description_insights"`
	Similarity  float64 `json:"similarity" gorm:"column:similarity"`
}
