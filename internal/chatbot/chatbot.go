// Package chatbot answers free-text questions from portal users, either
// from a fixed keyword table or through an OpenAI-compatible model.
package chatbot

import (
	"context"
	"strings"
)

// Responder turns a user message into a reply.
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
}

type rule struct {
	keywords []string
	reply    string
}

const fallbackReply = "I'm sorry, I don't understand. Please ask me about placements, internships, or resumes."

var defaultRules = []rule{
	{keywords: []string{"hello", "hi"}, reply: "Hello! How can I help you today?"},
	{keywords: []string{"placements", "internships"}, reply: `You can find all the latest placement and internship drives on the "Apply for Drive" page.`},
	{keywords: []string{"resume"}, reply: `You can upload your resume on the "Upload Resume" page.`},
}

// RuleResponder matches keywords as case-insensitive substrings. The first
// rule with a matching keyword wins.
type RuleResponder struct {
	rules []rule
}

// NewRuleResponder returns a responder over the built-in rule table.
func NewRuleResponder() *RuleResponder {
	return &RuleResponder{rules: defaultRules}
}

// Reply returns the first matching rule's reply, or the fallback. It never fails.
func (r *RuleResponder) Reply(_ context.Context, message string) (string, error) {
	lower := strings.ToLower(message)
	for _, rl := range r.rules {
		for _, kw := range rl.keywords {
			if strings.Contains(lower, kw) {
				return rl.reply, nil
			}
		}
	}
	return fallbackReply, nil
}
