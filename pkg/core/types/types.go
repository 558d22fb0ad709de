// Package types defines the shared data model for the Dhozzi chat service:
// plans, users, chat messages, the history tree, and the tagged result union
// returned by the generation client.
package types

import (
	"sort"
	"time"
)

// Plan is a subscription tier. Tiers are ordered: basic < premium < platinum.
type Plan string

const (
	PlanBasic    Plan = "basic"
	PlanPremium  Plan = "premium"
	PlanPlatinum Plan = "platinum"
)

var planRank = map[Plan]int{
	PlanBasic:    0,
	PlanPremium:  1,
	PlanPlatinum: 2,
}

// AtLeast reports whether p grants access to features requiring min.
// Unknown plans rank below basic.
func (p Plan) AtLeast(min Plan) bool {
	return planRank[p] >= planRank[min]
}

// Valid reports whether p is a known plan tier.
func (p Plan) Valid() bool {
	_, ok := planRank[p]
	return ok
}

// Sender identifies which side of the conversation authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Voice is a prebuilt synthesis voice name accepted by the speech backend.
type Voice string

const (
	VoiceZephyr Voice = "Zephyr"
	VoicePuck   Voice = "Puck"
	VoiceCharon Voice = "Charon"
	VoiceKore   Voice = "Kore"
	VoiceFenrir Voice = "Fenrir"
)

// Attachment is an uploaded media payload carried inline on a message.
type Attachment struct {
	Base64   string `json:"base64"`
	MIMEType string `json:"mime_type"`
}

// GroundingChunk is a citation attached to a grounded text response.
type GroundingChunk struct {
	Web  *GroundingSource `json:"web,omitempty"`
	Maps *GroundingSource `json:"maps,omitempty"`
}

// GroundingSource names one cited source.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Message is one chat message. Assistant messages are inserted as empty
// placeholders and mutated in place when generation completes or fails.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`

	// Generated or uploaded image, base64-encoded.
	Image         string `json:"image,omitempty"`
	ImageMIMEType string `json:"image_mime_type,omitempty"`

	// Generated video download URL.
	Video string `json:"video,omitempty"`

	// Uploaded media attachments.
	UploadedVideo *Attachment `json:"uploaded_video,omitempty"`
	UploadedAudio *Attachment `json:"uploaded_audio,omitempty"`

	IsError bool             `json:"is_error,omitempty"`
	Sources []GroundingChunk `json:"sources,omitempty"`
}

// HistoryItemType distinguishes nodes of the history tree.
type HistoryItemType string

const (
	ItemChat   HistoryItemType = "chat"
	ItemFolder HistoryItemType = "folder"
)

// HistoryItem is one node of a user's sidebar history: a chat carrying an
// ordered message list, or a folder carrying nested items.
type HistoryItem struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Type HistoryItemType `json:"type"`

	// Folder fields.
	IsOpen bool          `json:"is_open,omitempty"`
	Items  []HistoryItem `json:"items,omitempty"`

	// Chat fields.
	Messages []Message `json:"messages,omitempty"`
	Model    string    `json:"model,omitempty"`

	Date time.Time `json:"date"`
}

// SortByDateDesc orders items newest-first. It applies to the top level only;
// nested folder contents keep their stored order.
func SortByDateDesc(items []HistoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
}

// User is one account record in the profile store.
type User struct {
	UID        string `json:"uid"`
	Email      string `json:"email"`
	Plan       Plan   `json:"plan"`
	KRXBalance int    `json:"krx_balance"`

	// LastLoginDate is a YYYY-MM-DD date string, "1970-01-01" for never.
	LastLoginDate string `json:"last_login_date"`
	Streak        int    `json:"streak"`

	// PlanActiveUntil is nil for plans without an expiry (basic).
	PlanActiveUntil *time.Time `json:"plan_active_until,omitempty"`
}
