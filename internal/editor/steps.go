package editor

// StepKey identifies one stage of the editing sequence.
type StepKey string

const (
	StepGeneralInfo    StepKey = "general-info"
	StepPersonalInfo   StepKey = "personal-info"
	StepWorkExperience StepKey = "work-experience"
	StepEducation      StepKey = "education"
	StepSkill          StepKey = "skill"
	StepSummary        StepKey = "summary"
)

// Step pairs a key with its display title.
type Step struct {
	Key   StepKey `json:"key"`
	Title string  `json:"title"`
}

// Steps is the fixed editing order.
var Steps = []Step{
	{Key: StepGeneralInfo, Title: "General info"},
	{Key: StepPersonalInfo, Title: "Personal info"},
	{Key: StepWorkExperience, Title: "Work experience"},
	{Key: StepEducation, Title: "Education"},
	{Key: StepSkill, Title: "Skills"},
	{Key: StepSummary, Title: "Summary"},
}

func FirstStep() StepKey {
	return Steps[0].Key
}

func stepIndex(key StepKey) int {
	for i, s := range Steps {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// ValidStep reports whether key names a known step.
func ValidStep(key StepKey) bool {
	return stepIndex(key) >= 0
}

// PreviousStep returns the step before key. The first step has none.
func PreviousStep(key StepKey) (StepKey, bool) {
	i := stepIndex(key)
	if i <= 0 {
		return "", false
	}
	return Steps[i-1].Key, true
}

// NextStep returns the step after key. The last step has none.
func NextStep(key StepKey) (StepKey, bool) {
	i := stepIndex(key)
	if i < 0 || i == len(Steps)-1 {
		return "", false
	}
	return Steps[i+1].Key, true
}
