package agents

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/routing"
)

// EmailSignature closes every formatted support email.
const EmailSignature = `Best regards,
Thomas von Mentlen
Customer Support Team
Nakamo
tvm@nakamo.io`

// CustomerInfo carries what could be read from the customer's message.
// Zero-value fields fall back to neutral defaults at use sites.
type CustomerInfo struct {
	CustomerName string
	Subject      string
	SenderEmail  string
}

var emailAddressPattern = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)

// ExtractCustomerInfo pulls the customer's name, subject line, and email
// address out of a message using line heuristics. Missing fields get
// defaults so the result is always usable.
func ExtractCustomerInfo(input string) CustomerInfo {
	info := CustomerInfo{
		CustomerName: "Valued Customer",
		Subject:      "Support Request",
	}

	if addr := emailAddressPattern.FindString(input); addr != "" {
		info.SenderEmail = addr
	}

	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "subject:"):
			if s := strings.TrimSpace(line[len("subject:"):]); s != "" {
				info.Subject = s
			}
		case strings.HasPrefix(lower, "dear "), strings.HasPrefix(lower, "hello "), strings.HasPrefix(lower, "hi "):
			words := strings.Fields(line)
			if len(words) > 1 {
				name := strings.Trim(words[len(words)-1], ",.:;!")
				if name != "" && !strings.EqualFold(name, "team") && !strings.EqualFold(name, "support") {
					info.CustomerName = name
				}
			}
		}
	}
	return info
}

const emailFormatPrompt = `You format customer support replies as professional emails.

Rules:
- Start with a subject line: "Subject: Re: %s"
- Greet the customer: "Dear %s,"
- Keep the provided answer content intact; adjust tone and flow only
- Close with exactly this signature:

%s`

// EmailFormatter turns plain response content into a professional support
// email. Formatting never fails outward: when the model is unavailable the
// fixed template carries the content instead.
type EmailFormatter struct {
	model  llm.Service
	logger *slog.Logger
}

// NewEmailFormatter creates the email formatting responder.
func NewEmailFormatter(model llm.Service, logger *slog.Logger) *EmailFormatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailFormatter{model: model, logger: logger}
}

// Responder returns the identity this formatter serves.
func (f *EmailFormatter) Responder() routing.Responder {
	return routing.ResponderEmailFormatter
}

// Format renders content as a support email addressed per info.
func (f *EmailFormatter) Format(ctx context.Context, content string, info CustomerInfo) string {
	prompt := fmt.Sprintf(emailFormatPrompt, info.Subject, info.CustomerName, EmailSignature)
	messages := []llm.Message{
		llm.SystemPrompt(prompt),
		llm.UserMessage("Format this reply as an email:\n\n" + content),
	}

	reply, _, err := f.model.Chat(ctx, messages)
	if err != nil || strings.TrimSpace(reply) == "" {
		f.logger.Warn("email formatting fell back to the fixed template", "error", err)
		return f.fallbackEmail(content, info)
	}
	if !strings.Contains(reply, "tvm@nakamo.io") {
		reply = strings.TrimRight(reply, "\n") + "\n\n" + EmailSignature
	}
	return reply
}

func (f *EmailFormatter) fallbackEmail(content string, info CustomerInfo) string {
	return fmt.Sprintf(`Subject: Re: %s

Dear %s,

Thank you for contacting our support team.

%s

If you have any further questions, please don't hesitate to reach out.

%s`, info.Subject, info.CustomerName, strings.TrimSpace(content), EmailSignature)
}
