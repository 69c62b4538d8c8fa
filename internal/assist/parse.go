package assist

import (
	"regexp"
	"strings"

	"resume-builder/internal/resumes"
)

var (
	jobTitleLine    = regexp.MustCompile(`Job title: (.*)`)
	companyLine     = regexp.MustCompile(`Company: (.*)`)
	startDateLine   = regexp.MustCompile(`Start date: (\d{4}-\d{2}-\d{2})`)
	endDateLine     = regexp.MustCompile(`End date: (\d{4}-\d{2}-\d{2})`)
	descriptionPart = regexp.MustCompile(`Description:([\s\S]*)`)
)

// ParseWorkExperience pulls the five labelled fields out of a completion.
// Missing fields come back empty. Dates other than YYYY-MM-DD, such as
// "Present", are treated as missing.
func ParseWorkExperience(text string) resumes.WorkExperience {
	return resumes.WorkExperience{
		Position:    firstGroup(jobTitleLine, text),
		Company:     firstGroup(companyLine, text),
		StartDate:   firstGroup(startDateLine, text),
		EndDate:     firstGroup(endDateLine, text),
		Description: firstGroup(descriptionPart, text),
	}
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
