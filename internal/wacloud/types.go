// Package wacloud implements the WhatsApp Cloud API surface: webhook
// payload types, delivery signature verification, and the outbound
// Graph API message sender.
package wacloud

// WebhookPayload is the envelope Meta POSTs to the webhook endpoint.
// One delivery may batch events for multiple accounts and messages.
type WebhookPayload struct {
	Object string  `json:"object"` // always "whatsapp_business_account"
	Entry  []Entry `json:"entry"`
}

// Entry groups changes for one WhatsApp Business Account.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change is one field-scoped change notification.
type Change struct {
	Field string `json:"field"` // "messages" for inbound traffic
	Value Value  `json:"value"`
}

// Value carries the actual messages, contacts, and delivery statuses.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata identifies the receiving business phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact pairs a WhatsApp account id with its profile.
type Contact struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

// Profile holds the sender's display name.
type Profile struct {
	Name string `json:"name"`
}

// Message is one inbound message. Only Type "text" carries a Text body;
// media and interactive types are acknowledged but not processed.
type Message struct {
	From      string `json:"from"` // digits-only account id
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *Text  `json:"text,omitempty"`
}

// Text is the body of a text message.
type Text struct {
	Body string `json:"body"`
}

// Status is a delivery status update for a previously sent message.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"` // sent, delivered, read, failed
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// ContactName returns the display name for a sender account id, or empty
// if the delivery carried no matching contact block.
func (v Value) ContactName(waID string) string {
	for _, c := range v.Contacts {
		if c.WaID == waID {
			return c.Profile.Name
		}
	}
	return ""
}
