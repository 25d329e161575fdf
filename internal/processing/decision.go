package processing

import (
	"github.com/google/uuid"
	"github.com/vietddude/requeue/internal/core/domain"
)

// Decision is a strategy's verdict on one processing pass.
//
// When Commit is true the pack is finally closed and Reprocess is empty.
// When Commit is false, Reprocess holds the non-empty subset of messages
// to resubmit for another pass.
type Decision struct {
	Commit    bool
	Reprocess map[uuid.UUID]*domain.Message
}

func commitDecision() Decision {
	return Decision{Commit: true}
}

func reprocessDecision(msgs map[uuid.UUID]*domain.Message) Decision {
	return Decision{Commit: false, Reprocess: msgs}
}
