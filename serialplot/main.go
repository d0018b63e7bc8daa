package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/serialplot/pkg/config"
	"github.com/itohio/serialplot/pkg/controller"
	"github.com/itohio/serialplot/pkg/device"
	"github.com/itohio/serialplot/pkg/export"
	"github.com/itohio/serialplot/pkg/refresher"
	"github.com/itohio/serialplot/pkg/scope"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		baudFlag   = flag.Int("b", 0, fmt.Sprintf("Baud rate override, one of %v", config.BaudRates))
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use a simulated device instead of a serial port")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *baudFlag != 0 {
		if !config.ValidBaudRate(*baudFlag) {
			log.Fatalf("Unsupported baud rate %d, use one of %v", *baudFlag, config.BaudRates)
		}
		cfg.Serial.BaudRate = *baudFlag
	}

	application := app.NewWithID("com.itohio.serialplot")

	window := application.NewWindow("Serial Plotter")
	window.Resize(fyne.NewSize(1000, 700))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		window:  window,
		useMock: *mockFlag,
		chart:   scope.New(),
	}
	state.ctrl = controller.New(state.newDevice, cfg.Monitor.MalformedTolerance)
	state.ctrl.OnStateChange(func(st controller.Status) {
		fyne.Do(func() { state.applyStatus(st) })
	})

	toolbar := createToolbar(state)
	state.refreshPorts()
	state.applyStatus(state.ctrl.Status())

	content := container.NewBorder(
		toolbar,
		container.NewHBox(state.statusLabel, widget.NewSeparator(), state.dataLabel),
		nil,
		nil,
		state.chart,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		if err := state.ctrl.Disconnect(); err != nil {
			log.Printf("Error closing %s: %v", state.config().Serial.Port, err)
		}
	})
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfgMu   sync.RWMutex
	cfg     *config.Config // Replaced, never mutated, once the window is up
	cfgPath string
	ctrl    *controller.Controller
	chart   *scope.Chart
	window  fyne.Window
	useMock bool

	portSelect  *widget.Select
	baudSelect  *widget.Select
	refreshBtn  *widget.Button
	connectBtn  *widget.Button
	statusLabel *widget.Label
	dataLabel   *widget.Label

	ports map[string]string // Picker label to port name
}

// config returns the current configuration. Callers must not modify it.
func (s *appState) config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// updateConfig applies edit to a copy of the configuration and installs the copy
// only if it validates.
func (s *appState) updateConfig(edit func(c *config.Config)) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	next := *s.cfg
	edit(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = &next
	return nil
}

// newDevice builds the reader for a connection from the current settings.
// It runs on the connect goroutine.
func (s *appState) newDevice(port string, baudRate int) device.Device {
	cfg := s.config()
	opts := []device.Option{device.WithReadTimeout(cfg.Serial.ReadTimeout)}
	if s.useMock {
		mockCfg := cfg.Mock
		opts = append(opts, device.WithOpener(device.MockOpener(&mockCfg)))
	}
	return device.New(port, baudRate, device.DefaultBufferSize, opts...)
}

// createToolbar creates the toolbar with the port, baud rate and connection controls.
func createToolbar(state *appState) fyne.CanvasObject {
	state.portSelect = widget.NewSelect(nil, func(selected string) {
		if name, ok := state.ports[selected]; ok {
			setConfig(state, func(c *config.Config) { c.Serial.Port = name })
		}
	})
	state.portSelect.PlaceHolder = "Select port"

	state.refreshBtn = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		state.refreshPorts()
	})

	state.baudSelect = widget.NewSelect(baudOptions(), func(selected string) {
		if baud, ok := parseBaud(selected); ok {
			setConfig(state, func(c *config.Config) { c.Serial.BaudRate = baud })
		}
	})
	state.baudSelect.SetSelected(fmt.Sprint(state.config().Serial.BaudRate))

	state.connectBtn = widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})

	exportBtn := widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), func() {
		handleExport(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.statusLabel = widget.NewLabel("")
	state.dataLabel = widget.NewLabel("")

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(state.portSelect, state.refreshBtn, state.baudSelect, state.connectBtn), // left
		container.NewHBox(exportBtn, settingsBtn), // right
		nil, // center
	)
}

// refreshPorts re-enumerates serial ports and keeps the current selection if it is still present.
func (s *appState) refreshPorts() {
	var ports []device.Info
	if s.useMock {
		ports = []device.Info{{Name: "mock", Description: "Simulated device"}}
		if s.config().Serial.Port == "" {
			setConfig(s, func(c *config.Config) { c.Serial.Port = "mock" })
		}
	} else {
		var err error
		ports, err = device.Ports()
		if err != nil {
			log.Printf("Failed to list serial ports: %v", err)
		}
	}

	options, byLabel, selected := portOptions(ports, s.config().Serial.Port)
	s.ports = byLabel
	s.portSelect.SetOptions(options)
	if selected != "" {
		s.portSelect.SetSelected(selected)
	} else {
		s.portSelect.ClearSelected()
	}
}

// handleConnect toggles the connection depending on the current state.
func handleConnect(state *appState) {
	switch state.ctrl.State() {
	case controller.Connecting:
		return
	case controller.Connected:
		state.connectBtn.Disable()
		go func() {
			if err := state.ctrl.Disconnect(); err != nil {
				log.Printf("Error closing %s: %v", state.config().Serial.Port, err)
			}
			fmt.Println("Disconnected")
		}()
		return
	}

	cfg := state.config()
	port, baud := cfg.Serial.Port, cfg.Serial.BaudRate
	if port == "" {
		dialog.ShowInformation("Connect", "Select a serial port first.", state.window)
		return
	}

	state.ctrl.SetTolerance(cfg.Monitor.MalformedTolerance)
	rf := refresher.New(cfg.Plot.RefreshInterval, cfg.Monitor.NoDataTimeout, func(f refresher.Frame) {
		fyne.Do(func() { state.render(f) })
	})

	state.connectBtn.Disable()
	go func() {
		if err := state.ctrl.Connect(port, baud); err != nil {
			fyne.Do(func() {
				// Not every failure is a transition, so resync the controls
				state.applyStatus(state.ctrl.Status())
				if !errors.Is(err, controller.ErrBusy) {
					dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", port, err), state.window)
				}
			})
			return
		}
		fmt.Printf("Connected to %s @ %d\n", port, baud)

		session := state.ctrl.Session()
		rf.Run(session.Context(), session)
	}()
}

// handleExport saves the plotted window as PNG.
func handleExport(state *appState) {
	snap := state.chart.Snapshot()
	path := export.FileName(state.config().Plot.ExportDir, time.Now())

	if err := export.Save(path, snap); err != nil {
		if errors.Is(err, export.ErrEmptySnapshot) {
			dialog.ShowInformation("Save plot", "There is nothing to save yet.", state.window)
			return
		}
		dialog.ShowError(err, state.window)
		return
	}
	fmt.Printf("Saved plot to %s\n", path)
	dialog.ShowInformation("Save plot", "Saved to "+path, state.window)
}
