package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2/theme"
	"github.com/itohio/serialplot/pkg/config"
	"github.com/itohio/serialplot/pkg/controller"
	"github.com/itohio/serialplot/pkg/device"
	"github.com/itohio/serialplot/pkg/refresher"
)

// The functions below touch widgets and must run on the Fyne goroutine, via fyne.Do()
// when called from the controller or refresher goroutines.

// applyStatus updates the controls and the status line for a controller transition.
func (s *appState) applyStatus(st controller.Status) {
	s.statusLabel.SetText(st.String())

	label, connect := connectButton(st.State)
	s.connectBtn.SetText(label)
	if connect {
		s.connectBtn.SetIcon(theme.LoginIcon())
	} else {
		s.connectBtn.SetIcon(theme.LogoutIcon())
	}

	if st.State == controller.Connecting {
		s.connectBtn.Disable()
	} else {
		s.connectBtn.Enable()
	}

	// Port and speed are fixed for the lifetime of a connection
	if st.State == controller.Connecting || st.State == controller.Connected {
		s.portSelect.Disable()
		s.baudSelect.Disable()
		s.refreshBtn.Disable()
	} else {
		s.portSelect.Enable()
		s.baudSelect.Enable()
		s.refreshBtn.Enable()
	}

	if st.State != controller.Connected {
		s.dataLabel.SetText(dataText(false))
	}
}

// render draws one refresher frame.
// A frame queued before the connection ended must not override the indicator
// applyStatus reset.
func (s *appState) render(f refresher.Frame) {
	s.chart.Update(f.Samples)
	if s.ctrl.State() == controller.Connected {
		s.dataLabel.SetText(dataText(f.Receiving))
	}
}

// connectButton returns the connect button label and whether it starts a connection.
func connectButton(state controller.State) (string, bool) {
	switch state {
	case controller.Connected:
		return "Disconnect", false
	case controller.Connecting:
		return "Connecting", false
	default:
		return "Connect", true
	}
}

func dataText(receiving bool) string {
	if receiving {
		return "Data coming"
	}
	return "No data"
}

// portOptions builds picker labels for ports. current is appended if it was not enumerated,
// so a port given on the command line stays selectable.
func portOptions(ports []device.Info, current string) (options []string, byLabel map[string]string, selected string) {
	byLabel = make(map[string]string, len(ports)+1)
	for _, p := range ports {
		label := p.Label()
		options = append(options, label)
		byLabel[label] = p.Name
		if p.Name == current {
			selected = label
		}
	}

	if selected == "" && current != "" {
		options = append(options, current)
		byLabel[current] = current
		selected = current
	}
	return options, byLabel, selected
}

func baudOptions() []string {
	out := make([]string, len(config.BaudRates))
	for i, b := range config.BaudRates {
		out[i] = fmt.Sprint(b)
	}
	return out
}

func parseBaud(s string) (int, bool) {
	baud, err := strconv.Atoi(s)
	if err != nil || !config.ValidBaudRate(baud) {
		return 0, false
	}
	return baud, true
}
