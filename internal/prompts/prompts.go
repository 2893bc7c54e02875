package prompts

import (
	"embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/profile"
	"github.com/spigell/jobapply/internal/utils"
)

//go:embed templates/*.md
var templates embed.FS

const (
	FitResumeLimit         = 2000
	FitDescriptionLimit    = 2000
	AnswerDescriptionLimit = 1200
	AnswerResumeLimit      = 2000
	GenerateDescription    = 500
	// Similar past answers quoted in a generation prompt.
	GenerateExamples = 3
	shortFieldLength = 400
	notSpecified     = "Not specified"
	unknown          = "Unknown"
)

var (
	yesNoQuestion  = regexp.MustCompile(`(?i)\byes\b|\bno\b|\bcheck this box\b|\bselect if\b`)
	skillsQuestion = regexp.MustCompile(`(?i)key skills|skills and technologies|technical skills|core skills|relevant skills`)
)

func render(name string, pairs ...string) string {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("prompt template %s is not embedded: %v", name, err))
	}
	return strings.NewReplacer(pairs...).Replace(strings.TrimRight(string(data), "\n"))
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// System is the opening message of a conversation about job.
func System(job form.Job) string {
	return render("system.md",
		"{{JOB_TITLE}}", job.JobTitle,
		"{{COMPANY}}", job.Company,
	)
}

// Fit asks the model to score the candidate against job. Without resume text a short
// profile digest stands in for it.
func Fit(job form.Job, p profile.Profile, resume profile.Resume) string {
	resumeText := resume.Excerpt(FitResumeLimit)
	if strings.TrimSpace(resumeText) == "" {
		resumeText = ProfileDigest(p)
	}

	return render("fit.md",
		"{{RESUME}}", resumeText,
		"{{JOB_TITLE}}", job.JobTitle,
		"{{COMPANY}}", job.Company,
		"{{LOCATION}}", orDefault(job.Location, notSpecified),
		"{{JOB_TYPE}}", orDefault(job.JobType, notSpecified),
		"{{WORK_MODEL}}", orDefault(job.WorkModel, notSpecified),
		"{{DESCRIPTION}}", utils.Truncate(job.Description, FitDescriptionLimit),
	)
}

// ProfileDigest summarizes the profile when no resume text is available.
func ProfileDigest(p profile.Profile) string {
	skills := notSpecified
	if len(p.Skills) > 0 {
		skills = strings.Join(p.Skills, ", ")
	}
	years := notSpecified
	if p.YearsExperience > 0 {
		years = strconv.Itoa(p.YearsExperience)
	}

	return fmt.Sprintf("Name: %s\nSkills: %s\nExperience: %s years\nLocation: %s",
		orDefault(p.FullName, notSpecified), skills, years, orDefault(p.Location, notSpecified))
}

// AnswerInput is everything the answer prompt draws on.
type AnswerInput struct {
	Question    string
	Field       form.Field
	Job         form.Job
	Profile     profile.Profile
	Preferences profile.Preferences
	Resume      profile.Resume
}

// Mode describes how the model is told to shape its answer.
type Mode struct {
	LengthHint string
	Boolean    bool
	Skills     bool
}

// AnswerMode derives the answer shape from the field and the question wording.
func AnswerMode(question string, field form.Field) Mode {
	mode := Mode{LengthHint: "Answer in 2-3 concise, professional sentences."}

	if strings.EqualFold(field.Type, form.TypeTextarea) {
		mode.LengthHint = "Answer in 3-5 concise, specific sentences that sound like you wrote them."
	}
	if field.MaxLength > 0 && field.MaxLength < shortFieldLength {
		mode.LengthHint = fmt.Sprintf("Keep the answer under %d characters (1-2 short sentences).", field.MaxLength)
	}

	mode.Boolean = field.IsChoice() || yesNoQuestion.MatchString(question)
	mode.Skills = skillsQuestion.MatchString(question)

	return mode
}

const booleanInstructions = `
BOOLEAN DECISION:
- First, decide if the correct answer is YES or NO for this person.
- Start your response with YES or NO in all caps, then a short explanation.
- If the checkbox should be left unchecked, clearly answer NO.
`

const skillsInstructions = `
SKILLS QUESTION:
- Select 5-10 key skills or technologies from MY RESUME that are most relevant to the JOB.
- Only use skills that actually appear in my resume; do not invent new ones.
- Prefer skills and tools that are explicitly mentioned in the job description.
- Return them as a single comma-separated list (no bullets, no extra sentences).
`

// Answer asks the model to answer a single form question in the candidate's voice.
func Answer(in AnswerInput) string {
	mode := AnswerMode(in.Question, in.Field)

	var options string
	if len(in.Field.Options) > 0 {
		list := make([]string, 0, len(in.Field.Options))
		for _, opt := range in.Field.Options {
			list = append(list, fmt.Sprintf("%s [value=%q]", opt.Text, opt.Value))
		}
		options = "OPTIONS: " + strings.Join(list, ", ")
	}

	var boolean, skills string
	if mode.Boolean {
		boolean = booleanInstructions
	}
	if mode.Skills {
		skills = skillsInstructions
	}

	return render("answer.md",
		"{{JOB_TITLE}}", orDefault(in.Job.JobTitle, unknown),
		"{{COMPANY}}", orDefault(in.Job.Company, unknown),
		"{{DESCRIPTION}}", utils.Truncate(in.Job.Description, AnswerDescriptionLimit),
		"{{PROFILE}}", preferenceDigest(in.Profile, in.Preferences),
		"{{RESUME}}", in.Resume.Excerpt(AnswerResumeLimit),
		"{{QUESTION}}", in.Question,
		"{{FIELD_TYPE}}", in.Field.Type,
		"{{OPTIONS}}", options,
		"{{LENGTH_HINT}}", mode.LengthHint,
		"{{BOOLEAN}}", boolean,
		"{{SKILLS}}", skills,
	)
}

func preferenceDigest(p profile.Profile, prefs profile.Preferences) string {
	return strings.Join([]string{
		"Name: " + p.FullName,
		"Work authorization: " + prefs.WorkAuthorization,
		"Veteran status: " + prefs.VeteranStatus,
		"Disability status: " + prefs.DisabilityStatus,
		"Security clearance: " + prefs.SecurityClearance,
		"Requires sponsorship: " + prefs.RequiresSponsorship,
	}, "\n")
}

// Generate asks for free-form content for a field, quoting up to GenerateExamples
// earlier answers to similar fields.
func Generate(field form.Field, job *form.Job, p profile.Profile, prefs profile.Preferences, similar []string) string {
	var j form.Job
	if job != nil {
		j = *job
	}

	description := utils.Truncate(j.Description, GenerateDescription)

	years := "Not provided"
	if p.YearsExperience > 0 {
		years = strconv.Itoa(p.YearsExperience)
	}

	var examples strings.Builder
	if len(similar) > 0 {
		if len(similar) > GenerateExamples {
			similar = similar[len(similar)-GenerateExamples:]
		}
		examples.WriteString("\nPrevious Similar Responses:\n")
		for i, s := range similar {
			fmt.Fprintf(&examples, "%d. %q\n", i+1, s)
		}
	}

	return render("generate.md",
		"{{JOB_TITLE}}", orDefault(j.JobTitle, unknown),
		"{{COMPANY}}", orDefault(j.Company, unknown),
		"{{JOB_TYPE}}", orDefault(j.JobType, unknown),
		"{{DESCRIPTION}}", orDefault(description, "Not available"),
		"{{FIELD_LABEL}}", field.Label,
		"{{FIELD_TYPE}}", field.Type,
		"{{FIELD_PLACEHOLDER}}", orDefault(field.Placeholder, "none"),
		"{{FIELD_NAME}}", field.Name,
		"{{FULL_NAME}}", orDefault(p.FullName, "Not provided"),
		"{{EMAIL}}", orDefault(p.Email, "Not provided"),
		"{{YEARS}}", years,
		"{{PREF_JOB_TYPE}}", orDefault(prefs.JobType, "Full Time"),
		"{{PREF_LOCATION}}", orDefault(prefs.Location, notSpecified),
		"{{PREF_AUTHORIZATION}}", orDefault(prefs.WorkAuthorization, notSpecified),
		"{{SIMILAR}}", examples.String(),
	)
}

const notProvided = "Not provided"

// FieldAnalysis asks the model to classify field and suggest a value from p.
func FieldAnalysis(field form.Field, p profile.Profile, page form.Page) string {
	return render("field.md",
		"{{FIELD_TYPE}}", field.Type,
		"{{FIELD_LABEL}}", field.Label,
		"{{FIELD_PLACEHOLDER}}", field.Placeholder,
		"{{FIELD_NAME}}", field.Name,
		"{{REQUIRED}}", strconv.FormatBool(field.Required),
		"{{FULL_NAME}}", orDefault(p.FullName, notProvided),
		"{{EMAIL}}", orDefault(p.Email, notProvided),
		"{{PHONE}}", orDefault(p.Phone, notProvided),
		"{{LINKEDIN}}", orDefault(p.LinkedIn, notProvided),
		"{{PAGE_URL}}", page.URL,
		"{{PAGE_TITLE}}", page.Title,
	)
}
