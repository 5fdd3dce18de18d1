package notification

// Kind identifies the request type a notification is about.
type Kind string

const (
	KindVacation      Kind = "vacation"
	KindException     Kind = "exception"
	KindAssetRequest  Kind = "asset_request"
	KindSupplyRequest Kind = "supply_request"
	KindAttendance    Kind = "attendance"
	KindAssignment    Kind = "asset_assignment"
	KindProject       Kind = "project"
)

// Label is the human readable request name used in email subjects.
func (k Kind) Label() string {
	switch k {
	case KindVacation:
		return "Vacation request"
	case KindException:
		return "Attendance exception"
	case KindAssetRequest:
		return "Asset request"
	case KindSupplyRequest:
		return "Office supply request"
	case KindAttendance:
		return "Attendance"
	case KindAssignment:
		return "Asset assignment"
	case KindProject:
		return "Project"
	}
	return string(k)
}

// EventName is the realtime event published when a request of this kind changes.
func (k Kind) EventName() string {
	return string(k) + ".updated"
}

type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeApproved  Outcome = "approved"
	OutcomeRejected  Outcome = "rejected"
)

type Detail struct {
	Label string
	Value string
}

// Message describes a request lifecycle email.
type Message struct {
	Kind      Kind
	Outcome   Outcome
	RequestID string
	// ActorName is the requester for submissions and the reviewer for decisions.
	ActorName string
	Summary   string
	Details   []Detail
	Reason    string
}

// Event is a realtime update pushed over the event stream.
type Event struct {
	ID   string      `json:"id"`
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}
