package gemini

import (
	"strings"

	"google.golang.org/genai"

	"github.com/spigell/jobapply/internal/ai"
)

var (
	roleUser  = string(genai.RoleUser)
	roleModel = string(genai.RoleModel)
)

// toContents splits a conversation into the system instruction and the turn history.
func toContents(messages []ai.Message) (*genai.Content, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			continue
		}

		switch msg.Role {
		case ai.RoleSystem:
			system = append(system, text)
		case ai.RoleAssistant:
			contents = append(contents, &genai.Content{Role: roleModel, Parts: []*genai.Part{{Text: text}}})
		default:
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []*genai.Part{{Text: text}}})
		}
	}

	if len(system) == 0 {
		return nil, contents
	}

	return &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}, contents
}
