package profile

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/jobapply/internal/utils"
)

// Resume is the plain-text export of the candidate's resume.
type Resume struct {
	Path string
	Text string
}

// LoadResume reads a text resume. An empty path yields an empty resume.
func LoadResume(path string) (Resume, error) {
	if strings.TrimSpace(path) == "" {
		return Resume{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Resume{}, fmt.Errorf("read resume: %w", err)
	}

	return Resume{Path: path, Text: string(data)}, nil
}

func (r Resume) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Excerpt returns the first n runes of the resume.
func (r Resume) Excerpt(n int) string {
	return utils.Truncate(r.Text, n)
}

var (
	emailRe    = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phoneRe    = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedinRe = regexp.MustCompile(`(?i)(?:linkedin\.com/in/)([\w-]+)|LinkedIn\s*\n\s*(https?://\S+)`)
	githubRe   = regexp.MustCompile(`(?i)(?:github\.com/)([\w-]+)|GitHub\s*\n\s*(https?://\S+)`)
	websiteRe  = regexp.MustCompile(`(?:https?://)?([\w-]+\.[\w-]+\.\w+)`)
	contactRe  = regexp.MustCompile(`CONTACT\s*\n\s*([A-Z][a-z]+\s+[A-Z][a-z]+)`)
	nameLineRe = regexp.MustCompile(`(?m)^([A-Z][a-z]+\s+[A-Z][a-z]+)`)
	locationRe = regexp.MustCompile(`([A-Z][a-z]+,\s*[A-Z]{2})`)
	yearRe     = regexp.MustCompile(`\b(20\d{2})\b`)

	summaryHeader = regexp.MustCompile(`(?i)SUMMARY\s*\n\s*`)
	skillsHeader  = regexp.MustCompile(`(?i)KEY SKILLS\s*\n\s*`)
	sectionEnd    = regexp.MustCompile(`(?i)\n\n|KEY SKILLS|CERTIFICATIONS|PROFESSIONAL`)
	skillSplit    = regexp.MustCompile(`\n|,`)
)

// ParseResume extracts profile details from resume text. Years of experience count from
// the earliest 20xx year mentioned up to now.
func ParseResume(text string, now time.Time) Profile {
	var p Profile

	p.Email = emailRe.FindString(text)
	p.Phone = phoneRe.FindString(text)
	p.LinkedIn = profileLink(linkedinRe, text, "https://linkedin.com/in/")
	p.GitHub = profileLink(githubRe, text, "https://github.com/")

	if site := websiteRe.FindString(text); site != "" && !strings.Contains(site, "linkedin") && !strings.Contains(site, "github") {
		if !strings.HasPrefix(site, "http") {
			site = "https://" + site
		}
		p.Website = site
	}

	if m := contactRe.FindStringSubmatch(text); m != nil {
		p.FullName = m[1]
	} else if m := nameLineRe.FindStringSubmatch(text); m != nil {
		p.FullName = m[1]
	}

	if m := locationRe.FindStringSubmatch(text); m != nil {
		p.Location = m[1]
	}

	if body, ok := section(text, summaryHeader); ok {
		p.Summary = strings.TrimSpace(body)
	}

	if body, ok := section(text, skillsHeader); ok {
		for _, s := range skillSplit.Split(body, -1) {
			s = strings.TrimSpace(s)
			if len(s) > 2 && len(s) < 50 {
				p.Skills = append(p.Skills, s)
			}
		}
	}

	earliest := 0
	for _, y := range yearRe.FindAllString(text, -1) {
		year, err := strconv.Atoi(y)
		if err != nil {
			continue
		}
		if earliest == 0 || year < earliest {
			earliest = year
		}
	}
	if earliest > 0 {
		p.YearsExperience = now.Year() - earliest
	}

	return p
}

func profileLink(re *regexp.Regexp, text, base string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return base + m[1]
	}
	return m[2]
}

// section returns the text after header up to the next blank line or known heading.
// A section that runs to the end of the text without a terminator is not recognised.
func section(text string, header *regexp.Regexp) (string, bool) {
	loc := header.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	rest := text[loc[1]:]
	end := sectionEnd.FindStringIndex(rest)
	if end == nil {
		return "", false
	}

	return rest[:end[0]], true
}
