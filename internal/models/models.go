package models

import "time"

// User represents a registered citizen or dispatcher account.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	FullName  string    `json:"fullName"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// TrackingStatus is a snapshot of the tracking flag at a point in time.
type TrackingStatus struct {
	TrackingActive bool      `json:"trackingActive"`
	LastToggleTime int64     `json:"lastToggleTime"`
	Timestamp      time.Time `json:"timestamp"`
}

// LocationRecord is the singleton ambulance position row.
// AddressText is resolved best-effort and may lag the coordinates.
type LocationRecord struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	AddressText *string   `json:"addressText"`
	IsBusy      bool      `json:"isBusy"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Message is one chat message between two users. At least one of
// Content, ImageURL, Latitude+Longitude or EmoticonCode is set.
type Message struct {
	ID           int       `json:"id"`
	SenderID     int       `json:"senderId"`
	ReceiverID   int       `json:"receiverId"`
	Content      *string   `json:"content"`
	ImageURL     *string   `json:"imageUrl"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	EmoticonCode *string   `json:"emoticonCode"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ConversationMessage is a message joined with the id and name of the
// other participant, as returned by the message store for aggregation.
type ConversationMessage struct {
	Message
	PartnerID   int
	PartnerName string
}

// LastMessage carries the content fields of a conversation's newest message.
type LastMessage struct {
	Content      *string  `json:"content"`
	ImageURL     *string  `json:"imageUrl"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	EmoticonCode *string  `json:"emoticonCode"`
}

// Conversation is a derived view: the most recent message exchanged
// with one distinct partner. Never stored.
type Conversation struct {
	PartnerID     int         `json:"partnerId"`
	PartnerName   string      `json:"partnerName"`
	LastMessage   LastMessage `json:"lastMessage"`
	LastTimestamp time.Time   `json:"lastTimestamp"`
}

// ChatHistoryEntry is a message tagged with its direction relative to
// the requesting user.
type ChatHistoryEntry struct {
	Message
	Direction string `json:"direction"` // "outgoing" or "incoming"
}

// CallRecord is one entry in the emergency call history.
type CallRecord struct {
	ID       int       `json:"id"`
	UserID   int       `json:"userId"`
	UserName string    `json:"userName"`
	CalledAt time.Time `json:"calledAt"`
}

// Comment is a public comment attached to an ambulance.
type Comment struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	AmbulanceID  int       `json:"ambulanceId"`
	Content      *string   `json:"content"`
	ImageURL     *string   `json:"imageUrl"`
	EmoticonCode *string   `json:"emoticonCode"`
	ParentID     *int      `json:"parentId"`
	CreatedAt    time.Time `json:"createdAt"`
	Username     string    `json:"username"`
	IsAdmin      bool      `json:"isAdmin"`
}
