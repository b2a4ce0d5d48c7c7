package dto

import "club-knowledge-api/internal/application/ingestion"

// AddEventRequest 新活动表单，可选字段缺省时由入库流程补齐
type AddEventRequest struct {
	NameOfEvent         string `json:"name_of_event"`
	EventDomain         string `json:"event_domain"`
	DateOfEvent         string `json:"date_of_event"`
	DescriptionInsights string `json:"description_insights"`
	TimeOfEvent         string `json:"time_of_event"`
	FacultyCoordinators string `json:"faculty_coordinators"`
	StudentCoordinators string `json:"student_coordinators"`
	Venue               string `json:"venue"`
	ModeOfEvent         string `json:"mode_of_event"`
	RegistrationFee     string `json:"registration_fee"`
	Speakers            string `json:"speakers"`
	Perks               string `json:"perks"`
	Collaboration       string `json:"collaboration"`
}

// ToInput 转换为入库输入
func (r *AddEventRequest) ToInput() ingestion.Input {
	return ingestion.Input{
		Name:                r.NameOfEvent,
		Domain:              r.EventDomain,
		Date:                r.DateOfEvent,
		Time:                r.TimeOfEvent,
		FacultyCoordinators: r.FacultyCoordinators,
		StudentCoordinators: r.StudentCoordinators,
		Venue:               r.Venue,
		Mode:                r.ModeOfEvent,
		RegistrationFee:     r.RegistrationFee,
		Speakers:            r.Speakers,
		Perks:               r.Perks,
		Collaboration:       r.Collaboration,
		Description:         r.DescriptionInsights,
	}
}

// AddEventResponse 入库成功响应
type AddEventResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
