package resumes

import "time"

// BorderStyle controls the photo frame in the rendered document.
type BorderStyle string

const (
	BorderSquircle BorderStyle = "squircle"
	BorderCircle   BorderStyle = "circle"
	BorderSquare   BorderStyle = "square"
)

const (
	DefaultColorHex    = "#000000"
	DefaultBorderStyle = BorderSquircle
)

// Resume is one user's document. WorkExperiences and Educations keep the
// order chosen by the user.
type Resume struct {
	ID              string           `json:"id"`
	UserID          string           `json:"-"`
	Title           string           `json:"title" validate:"max=100"`
	Description     string           `json:"description" validate:"max=500"`
	PhotoKey        string           `json:"-"`
	ColorHex        string           `json:"colorHex" validate:"omitempty,hexcolor"`
	BorderStyle     BorderStyle      `json:"borderStyle" validate:"omitempty,oneof=squircle circle square"`
	Summary         string           `json:"summary" validate:"max=5000"`
	FirstName       string           `json:"firstName" validate:"max=100"`
	LastName        string           `json:"lastName" validate:"max=100"`
	JobTitle        string           `json:"jobTitle" validate:"max=100"`
	City            string           `json:"city" validate:"max=100"`
	Country         string           `json:"country" validate:"max=100"`
	Phone           string           `json:"phone" validate:"max=50"`
	Email           string           `json:"email" validate:"omitempty,email,max=200"`
	WorkExperiences []WorkExperience `json:"workExperiences" validate:"max=10,dive"`
	Educations      []Education      `json:"educations" validate:"max=10,dive"`
	Skills          []string         `json:"skills" validate:"max=30,dive,max=100"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type WorkExperience struct {
	Position    string `json:"position" validate:"max=100"`
	Company     string `json:"company" validate:"max=100"`
	StartDate   string `json:"startDate" validate:"isodate"`
	EndDate     string `json:"endDate" validate:"isodate"`
	Description string `json:"description" validate:"max=2000"`
}

type Education struct {
	Degree    string `json:"degree" validate:"max=100"`
	School    string `json:"school" validate:"max=100"`
	StartDate string `json:"startDate" validate:"isodate"`
	EndDate   string `json:"endDate" validate:"isodate"`
}

// Clone returns a deep copy so callers can mutate slices freely.
func (r Resume) Clone() Resume {
	out := r
	out.WorkExperiences = append([]WorkExperience(nil), r.WorkExperiences...)
	out.Educations = append([]Education(nil), r.Educations...)
	out.Skills = append([]string(nil), r.Skills...)
	return out
}
