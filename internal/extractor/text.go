package extractor

import (
	"fmt"
	"strings"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

// AudioPlaceholder stands in for an audio message whose transcript has not
// arrived yet, so the conversation keeps its shape for the providers.
const AudioPlaceholder = "[áudio sem transcrição]"

// MessageText returns the analyzable text of a message: the content for text
// messages, the transcript for transcribed audio, a placeholder otherwise.
func MessageText(m model.Message) string {
	switch m.Type {
	case model.TypeAudio:
		if m.AudioTranscription != "" {
			return m.AudioTranscription
		}
		return AudioPlaceholder
	default:
		if m.Content == "" && m.Type != model.TypeText {
			return fmt.Sprintf("[%s]", m.Type)
		}
		return m.Content
	}
}

// Flatten renders a message window as a speaker-labeled transcript for
// prompting and local analysis.
func Flatten(messages []model.Message) string {
	var b strings.Builder
	for _, m := range messages {
		label := "Cliente"
		if m.Direction == model.DirectionSent {
			label = "Atendente"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(MessageText(m))
		b.WriteString("\n")
	}
	return b.String()
}

// ReceivedText concatenates the contact's side of the conversation, which is
// what most classifiers care about.
func ReceivedText(messages []model.Message) string {
	var parts []string
	for _, m := range messages {
		if m.Direction == model.DirectionReceived {
			parts = append(parts, MessageText(m))
		}
	}
	return strings.Join(parts, "\n")
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Normalize lowercases text and strips the accents common in pt-BR chat, so
// keyword lists match both spellings.
func Normalize(s string) string {
	s = strings.ToLower(s)
	replacer := strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ã", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "ô", "o", "õ", "o",
		"ú", "u", "ü", "u",
		"ç", "c",
	)
	return replacer.Replace(s)
}
