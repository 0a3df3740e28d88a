package models

import "fmt"

// CallbackStatus is the document status reported by the editing service.
// Status 5 does not exist in the vendor protocol.
type CallbackStatus int

const (
	StatusNotFound           CallbackStatus = 0
	StatusEditing            CallbackStatus = 1
	StatusMustSave           CallbackStatus = 2
	StatusCorrupted          CallbackStatus = 3
	StatusClosed             CallbackStatus = 4
	StatusMustForceSave      CallbackStatus = 6
	StatusCorruptedForceSave CallbackStatus = 7
)

var callbackStatusNames = map[CallbackStatus]string{
	StatusNotFound:           "NotFound",
	StatusEditing:            "Editing",
	StatusMustSave:           "MustSave",
	StatusCorrupted:          "Corrupted",
	StatusClosed:             "Closed",
	StatusMustForceSave:      "MustForceSave",
	StatusCorruptedForceSave: "CorruptedForceSave",
}

func (s CallbackStatus) Known() bool {
	_, ok := callbackStatusNames[s]
	return ok
}

func (s CallbackStatus) String() string {
	if name, ok := callbackStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(s))
}

// Action types inside a status 1 callback.
const (
	ActionDisconnected = 0
	ActionConnected    = 1
)

// CallbackAction identifies a user joining or leaving the editing session.
type CallbackAction struct {
	Type   int    `json:"type"`
	UserID string `json:"userid"`
}

// ForceSaveSubmitForm marks a force-save triggered by a form submission.
const ForceSaveSubmitForm = 3

// CallbackBody is the JSON payload of a status webhook from the editing
// service. When service auth is enabled the body may instead be a JWT
// whose claims decode into this shape.
type CallbackBody struct {
	Status        CallbackStatus   `json:"status"`
	Url           string           `json:"url,omitempty"`
	Token         string           `json:"token,omitempty"`
	Actions       []CallbackAction `json:"actions,omitempty"`
	ForceSaveType *int             `json:"forcesavetype,omitempty"`
}

// ActingUserID returns the user id of the first action, or "" when the
// callback carries none.
func (b *CallbackBody) ActingUserID() string {
	if len(b.Actions) == 0 {
		return ""
	}
	return b.Actions[0].UserID
}

// CallbackResult is the acknowledgement envelope the editing service
// expects: {"error":0} on success, {"error":1,"message":...} on failure.
type CallbackResult struct {
	Error   int    `json:"error"`
	Message string `json:"message,omitempty"`
}

// CallbackError carries the HTTP status and the message for a failed
// callback or download. Every failure in the protocol maps onto one of
// these so handlers can always produce a well-formed envelope.
type CallbackError struct {
	Status  int
	Message string
}

func (e CallbackError) Error() string { return e.Message }

func NewBadRequest(message string) CallbackError {
	return CallbackError{Status: 400, Message: message}
}

func NewUnauthorized(message string) CallbackError {
	return CallbackError{Status: 401, Message: message}
}

func NewForbidden(message string) CallbackError {
	return CallbackError{Status: 403, Message: message}
}

func NewNotFound(message string) CallbackError {
	return CallbackError{Status: 404, Message: message}
}

func NewInternalServerError(message string) CallbackError {
	return CallbackError{Status: 500, Message: message}
}
