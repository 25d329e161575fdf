package domain

// DeadLetter represents a message abandoned by an acknowledgment strategy.
type DeadLetter struct {
	ID          string            `json:"id"`
	Queue       string            `json:"queue"`
	MessageID   string            `json:"message_id"`
	Payload     []byte            `json:"payload"`
	Headers     map[string]string `json:"headers,omitempty"`
	Reason      AbandonReason     `json:"reason"`
	Error       string            `json:"error_msg"`
	Attempts    int               `json:"attempts"`
	AbandonedAt int64             `json:"abandoned_at"`
}

// AbandonReason classifies why a message was given up on.
type AbandonReason string

const (
	AbandonReasonSkipPolicy     AbandonReason = "skip_policy"
	AbandonReasonRetryExhausted AbandonReason = "retry_exhausted"
	AbandonReasonPolicyDefect   AbandonReason = "policy_defect"
)
