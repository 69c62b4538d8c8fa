package resumes

import "time"

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	HasPhoto        bool             `json:"hasPhoto"`
	ColorHex        string           `json:"colorHex"`
	BorderStyle     BorderStyle      `json:"borderStyle"`
	Summary         string           `json:"summary"`
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	JobTitle        string           `json:"jobTitle"`
	City            string           `json:"city"`
	Country         string           `json:"country"`
	Phone           string           `json:"phone"`
	Email           string           `json:"email"`
	WorkExperiences []WorkExperience `json:"workExperiences"`
	Educations      []Education      `json:"educations"`
	Skills          []string         `json:"skills"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ListResponse wraps a user's resumes with quota information.
type ListResponse struct {
	Resumes    []ResumeResponse `json:"resumes"`
	TotalCount int              `json:"totalCount"`
	CanCreate  bool             `json:"canCreate"`
}

func toResponse(r Resume) ResumeResponse {
	out := ResumeResponse{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		HasPhoto:        r.PhotoKey != "",
		ColorHex:        r.ColorHex,
		BorderStyle:     r.BorderStyle,
		Summary:         r.Summary,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		JobTitle:        r.JobTitle,
		City:            r.City,
		Country:         r.Country,
		Phone:           r.Phone,
		Email:           r.Email,
		WorkExperiences: r.WorkExperiences,
		Educations:      r.Educations,
		Skills:          r.Skills,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if out.WorkExperiences == nil {
		out.WorkExperiences = []WorkExperience{}
	}
	if out.Educations == nil {
		out.Educations = []Education{}
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	return out
}
