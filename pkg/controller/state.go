package controller

import "fmt"

// State is the connection state shown to the user.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Error
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is a point-in-time view of the controller for display.
type Status struct {
	State    State
	Port     string
	BaudRate int
	Err      error // Set in the Error state
}

// String renders the status line, e.g. "Connected to COM3 @ 9600".
func (s Status) String() string {
	switch s.State {
	case Connecting:
		return fmt.Sprintf("Connecting to %s @ %d", s.Port, s.BaudRate)
	case Connected:
		return fmt.Sprintf("Connected to %s @ %d", s.Port, s.BaudRate)
	case Error:
		if s.Err != nil {
			return fmt.Sprintf("Error: %v", s.Err)
		}
		return "Error"
	default:
		return s.State.String()
	}
}
