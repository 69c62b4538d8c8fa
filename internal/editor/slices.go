package editor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"resume-builder/internal/resumes"
)

// Slice is the part of a resume edited by one step.
type Slice interface {
	// Merge copies the slice into the draft.
	Merge(draft *resumes.Resume)
}

type GeneralInfo struct {
	Title       string `json:"title" validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (s GeneralInfo) Merge(d *resumes.Resume) {
	d.Title = s.Title
	d.Description = s.Description
}

type PersonalInfo struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	JobTitle  string `json:"jobTitle" validate:"max=100"`
	City      string `json:"city" validate:"max=100"`
	Country   string `json:"country" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=50"`
	Email     string `json:"email" validate:"omitempty,email,max=200"`
}

func (s PersonalInfo) Merge(d *resumes.Resume) {
	d.FirstName = s.FirstName
	d.LastName = s.LastName
	d.JobTitle = s.JobTitle
	d.City = s.City
	d.Country = s.Country
	d.Phone = s.Phone
	d.Email = s.Email
}

type WorkExperienceEntry struct {
	Position    string `json:"position" validate:"required,max=100"`
	Company     string `json:"company" validate:"max=100"`
	StartDate   string `json:"startDate" validate:"isodate"`
	EndDate     string `json:"endDate" validate:"isodate"`
	Description string `json:"description" validate:"max=2000"`
}

type WorkExperienceSlice struct {
	WorkExperiences []WorkExperienceEntry `json:"workExperiences" validate:"max=10,dive"`
}

func (s WorkExperienceSlice) Merge(d *resumes.Resume) {
	out := make([]resumes.WorkExperience, 0, len(s.WorkExperiences))
	for _, e := range s.WorkExperiences {
		out = append(out, resumes.WorkExperience(e))
	}
	d.WorkExperiences = out
}

type EducationEntry struct {
	Degree    string `json:"degree" validate:"required,max=100"`
	School    string `json:"school" validate:"max=100"`
	StartDate string `json:"startDate" validate:"isodate"`
	EndDate   string `json:"endDate" validate:"isodate"`
}

type EducationSlice struct {
	Educations []EducationEntry `json:"educations" validate:"max=10,dive"`
}

func (s EducationSlice) Merge(d *resumes.Resume) {
	out := make([]resumes.Education, 0, len(s.Educations))
	for _, e := range s.Educations {
		out = append(out, resumes.Education(e))
	}
	d.Educations = out
}

type SkillsSlice struct {
	Skills []string `json:"skills" validate:"max=30,dive,max=100"`
}

func (s SkillsSlice) Merge(d *resumes.Resume) {
	d.Skills = append([]string(nil), s.Skills...)
}

type SummarySlice struct {
	Summary string `json:"summary" validate:"max=5000"`
}

func (s SummarySlice) Merge(d *resumes.Resume) {
	d.Summary = s.Summary
}

// decodeSlice parses the payload for step. Unknown fields are rejected.
func decodeSlice(step StepKey, raw []byte) (Slice, error) {
	switch step {
	case StepGeneralInfo:
		var s GeneralInfo
		return s, strictDecode(raw, &s)
	case StepPersonalInfo:
		var s PersonalInfo
		return s, strictDecode(raw, &s)
	case StepWorkExperience:
		var s WorkExperienceSlice
		return s, strictDecode(raw, &s)
	case StepEducation:
		var s EducationSlice
		return s, strictDecode(raw, &s)
	case StepSkill:
		var s SkillsSlice
		if err := strictDecode(raw, &s); err != nil {
			return nil, err
		}
		s.Skills = resumes.NormalizeSkills(s.Skills)
		return s, nil
	case StepSummary:
		var s SummarySlice
		return s, strictDecode(raw, &s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
}

func strictDecode(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// sliceFor extracts the current slice of the draft for a step.
func sliceFor(step StepKey, d resumes.Resume) Slice {
	switch step {
	case StepGeneralInfo:
		return GeneralInfo{Title: d.Title, Description: d.Description}
	case StepPersonalInfo:
		return PersonalInfo{
			FirstName: d.FirstName, LastName: d.LastName, JobTitle: d.JobTitle,
			City: d.City, Country: d.Country, Phone: d.Phone, Email: d.Email,
		}
	case StepWorkExperience:
		out := WorkExperienceSlice{WorkExperiences: make([]WorkExperienceEntry, 0, len(d.WorkExperiences))}
		for _, e := range d.WorkExperiences {
			out.WorkExperiences = append(out.WorkExperiences, WorkExperienceEntry(e))
		}
		return out
	case StepEducation:
		out := EducationSlice{Educations: make([]EducationEntry, 0, len(d.Educations))}
		for _, e := range d.Educations {
			out.Educations = append(out.Educations, EducationEntry(e))
		}
		return out
	case StepSkill:
		return SkillsSlice{Skills: append([]string{}, d.Skills...)}
	case StepSummary:
		return SummarySlice{Summary: d.Summary}
	}
	return nil
}
