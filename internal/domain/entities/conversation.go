package entities

import (
	"strings"
	"time"
)

// MessageRole identifies who produced a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// MessageKind tags what a conversation message carries.
type MessageKind string

const (
	// KindText is plain conversational text.
	KindText MessageKind = "text"
	// KindFile marks a turn that consisted only of file attachments.
	KindFile MessageKind = "file"
	// KindThinking is a transient status marker shown while a turn resolves.
	KindThinking MessageKind = "thinking"
	// KindPatch announces which schema fields the last extraction filled.
	KindPatch MessageKind = "patch"
	// KindExpansion announces newly captured extra fields outside the schema.
	KindExpansion MessageKind = "expansion"
	// KindCompleteness carries the numeric completeness score.
	KindCompleteness MessageKind = "completeness"
	// KindCTA is the call-to-action emitted when the profile becomes ready.
	KindCTA MessageKind = "cta"
)

// Message is one append-only entry in a session's conversation log. Messages
// are immutable once appended.
type Message struct {
	ID          string      `json:"id"`
	Role        MessageRole `json:"role"`
	Kind        MessageKind `json:"kind"`
	Content     string      `json:"content,omitempty"`
	Attachments []FileRef   `json:"attachments,omitempty"`
	Fields      []string    `json:"fields,omitempty"`
	Confidence  float64     `json:"confidence,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// FileRef describes an uploaded file attached to a turn. Data is only carried
// in memory for the duration of the turn and never serialized.
type FileRef struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"-"`
}

// IsImage reports whether the file is a renderable image.
func (f FileRef) IsImage() bool {
	if strings.HasPrefix(f.ContentType, "image/") {
		return true
	}
	lower := strings.ToLower(f.Name)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp", ".gif"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// IsDICOM reports whether the file looks like a DICOM study.
func (f FileRef) IsDICOM() bool {
	if f.ContentType == "application/dicom" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".dcm")
}

// LocalURL returns a session-local reference for the file, preferring any
// upstream URL the caller already assigned.
func (f FileRef) LocalURL() string {
	if f.URL != "" {
		return f.URL
	}
	return "local://" + f.Name
}
