package event

type Type string

const (
	TypeGenerationCompleted Type = "generation.completed"
	TypeAccountConnected    Type = "account.connected"
	TypeAccountDisconnected Type = "account.disconnected"
	TypeAccountRefreshed    Type = "account.refreshed"
	TypePostCreated         Type = "post.created"
	TypePostScheduled       Type = "post.scheduled"
	TypePostPublished       Type = "post.published"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	ActorID   string      `json:"actor_id,omitempty"` // Owning user; only their connections receive it
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
