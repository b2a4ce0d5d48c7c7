package ingestion

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"club-knowledge-api/internal/domain/entity"
)

const (
	defaultMode = "Offline"
	defaultFee  = "0"
	maxEventID  = 150
)

// Input 新活动表单，字段名与 events 表一致
type Input struct {
	Name                string
	Domain              string
	Date                string
	Time                string
	FacultyCoordinators string
	StudentCoordinators string
	Venue               string
	Mode                string
	RegistrationFee     string
	Speakers            string
	Perks               string
	Collaboration       string
	Description         string
}

// ValidationError 表单校验失败
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize 校验必填字段并补齐缺省值
func Normalize(in Input) (*entity.Event, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name_of_event", Message: "is required"}
	}
	domain := strings.TrimSpace(in.Domain)
	if domain == "" {
		return nil, &ValidationError{Field: "event_domain", Message: "is required"}
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, &ValidationError{Field: "description_insights", Message: "is required"}
	}
	date, err := time.Parse(entity.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, &ValidationError{Field: "date_of_event", Message: "must be YYYY-MM-DD"}
	}

	ev := &entity.Event{
		EventID:             EventID(name),
		Name:                name,
		Domain:              domain,
		Date:                date,
		Time:                formatTime(in.Time),
		FacultyCoordinators: orDefault(in.FacultyCoordinators, entity.NotAvailable),
		StudentCoordinators: orDefault(in.StudentCoordinators, entity.NotAvailable),
		Venue:               orDefault(in.Venue, entity.NotAvailable),
		Mode:                orDefault(in.Mode, defaultMode),
		RegistrationFee:     orDefault(in.RegistrationFee, defaultFee),
		Speakers:            orDefault(in.Speakers, entity.NotAvailable),
		Perks:               orDefault(in.Perks, entity.NotAvailable),
		Collaboration:       orDefault(in.Collaboration, entity.NotAvailable),
		Description:         desc,
	}
	ev.SearchText = ev.BuildSearchText()
	return ev, nil
}

// EventID 空格替换为下划线，截断到 150 个字符
func EventID(name string) string {
	id := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if utf8.RuneCountInString(id) <= maxEventID {
		return id
	}
	return string([]rune(id)[:maxEventID])
}

// formatTime HH:MM 与 HH:MM:SS 统一为 03:04 PM，其余文本原样保留
func formatTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return entity.NotAvailable
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("03:04 PM")
		}
	}
	return s
}

func orDefault(s, def string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return def
}
