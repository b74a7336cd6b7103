// internal/workers/communication/send-alert/models.go
package sendalert

type Input struct {
	AlertType string                 `json:"alertType"`
	Operation string                 `json:"operation"`
	Attempts  int                    `json:"attempts,omitempty"`
	Error     string                 `json:"error"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Alert types
const (
	TypeRetryExhausted  = "retry_exhausted"
	TypeSmokeTestFailed = "smoke_test_failed"
)

// Channels
const (
	ChannelSES = "ses"
	ChannelSNS = "sns"
)

type template struct {
	subject string
	body    string
}

var templates = map[string]template{
	TypeRetryExhausted: {
		subject: "{{operation}} failed after {{attempts}} attempts",
		body: "The operation {{operation}} gave up after {{attempts}} attempts.\n\n" +
			"Last error: {{error}}\nItem: {{itemId}}\nKind: {{kind}}\nRun: {{runId}}",
	},
	TypeSmokeTestFailed: {
		subject: "startup smoke test failed",
		body:    "The startup smoke test failed and the scheduler was not started.\n\nError: {{error}}",
	},
}
