package assist

import (
	"fmt"
	"strings"

	"resume-builder/internal/resumes"
)

const (
	notAvailable = "Not available"
	present      = "Present"
)

const summarySystemPrompt = `You are an AI assistant specialized in writing professional CV summaries.
Your task is to generate a compelling, concise, and personalized summary based on the user's input data, which includes job title, work experiences, education, and skills.
The summary should highlight the user's strengths, career goals, and suitability for roles related to their background.
Use a confident and enthusiastic tone, suitable for modern professional resumes.
Do not include bullet points or redundant phrases. Keep it natural, focused, and tailored.
Only return the summary and do not include any other information in the response. Keep it short and concise.`

const workExperienceSystemPrompt = `You are an expert CV enhancement AI designed to craft professional work experience entries. Your goal is to transform simple job descriptions into polished, achievement-focused resume content.

Please format your response using the following structure exactly, with no additional fields:

Job title: <concise professional title>
Company: <organization name>
Start date: <YYYY-MM-DD format if available>
End date: <YYYY-MM-DD format or "Present" if applicable>
Description: <3-5 bullet points highlighting accomplishments, using action verbs and quantifiable results where possible>

Each bullet point should follow the PAR method (Problem-Action-Result) when possible, and begin with a strong action verb. Focus on achievements rather than responsibilities.`

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func buildSummaryPrompt(in SummaryInput) string {
	var b strings.Builder
	b.WriteString("Please generate a good, short resume summary from these data:\n")
	fmt.Fprintf(&b, "Job title: %s\n", orDefault(in.JobTitle, notAvailable))

	b.WriteString("Work Experiences:\n")
	for i, exp := range in.WorkExperiences {
		if i > 0 {
			b.WriteString("\n")
		}
		writeWorkExperience(&b, exp)
	}

	b.WriteString("\nEducation:\n")
	for i, edu := range in.Educations {
		if i > 0 {
			b.WriteString("\n")
		}
		writeEducation(&b, edu)
	}

	fmt.Fprintf(&b, "\nSkills: %s\n", strings.Join(in.Skills, ", "))
	return b.String()
}

func writeWorkExperience(b *strings.Builder, exp resumes.WorkExperience) {
	fmt.Fprintf(b, "  Position: %s\n", orDefault(exp.Position, notAvailable))
	fmt.Fprintf(b, "  Company: %s\n", orDefault(exp.Company, notAvailable))
	fmt.Fprintf(b, "  Start Date: %s\n", orDefault(exp.StartDate, notAvailable))
	fmt.Fprintf(b, "  End Date: %s\n", orDefault(exp.EndDate, present))
	fmt.Fprintf(b, "  Description: %s\n", orDefault(exp.Description, notAvailable))
}

func writeEducation(b *strings.Builder, edu resumes.Education) {
	fmt.Fprintf(b, "  Degree: %s\n", orDefault(edu.Degree, notAvailable))
	fmt.Fprintf(b, "  School: %s\n", orDefault(edu.School, notAvailable))
	fmt.Fprintf(b, "  Start Date: %s\n", orDefault(edu.StartDate, notAvailable))
	fmt.Fprintf(b, "  End Date: %s\n", orDefault(edu.EndDate, notAvailable))
}

func buildWorkExperiencePrompt(in WorkExperienceInput) string {
	return "I need a professionally formatted work experience entry for my resume based on this information:\n" +
		strings.TrimSpace(in.Description) +
		"\nPlease optimize it to showcase my skills and achievements in the best possible light.\n"
}
