package gateway

// Messenger is a chat transport that serves onboarding commands.
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

var _ Messenger = (*TelegramGateway)(nil)
