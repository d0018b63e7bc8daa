package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/serialplot/pkg/config"
)

// showSettingsDialog displays a settings dialog with one tab per configuration section.
// Changes are saved to the configuration file and apply to the next connection.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createPlotTab(state),
		createMonitorTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(520, 420))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

// saveConfig applies edit and persists the result. A rejected edit leaves the
// configuration untouched and is reported in a dialog.
func saveConfig(state *appState, edit func(c *config.Config)) {
	if err := state.updateConfig(edit); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := state.config().Save(state.cfgPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// setConfig applies a picker change. Pickers only offer valid values.
func setConfig(state *appState, edit func(c *config.Config)) {
	if err := state.updateConfig(edit); err != nil {
		log.Printf("Rejected setting: %v", err)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	cfg := state.config()

	readTimeoutEntry := widget.NewEntry()
	readTimeoutEntry.SetText(cfg.Serial.ReadTimeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Read Timeout", Widget: readTimeoutEntry},
		},
		OnSubmit: func() {
			saveConfig(state, func(c *config.Config) {
				if rt, err := time.ParseDuration(readTimeoutEntry.Text); err == nil {
					c.Serial.ReadTimeout = rt
				}
			})
		},
	}

	return container.NewTabItem("Serial", form)
}

// createPlotTab creates the Plot configuration tab.
func createPlotTab(state *appState) *container.TabItem {
	cfg := state.config()

	refreshEntry := widget.NewEntry()
	refreshEntry.SetText(cfg.Plot.RefreshInterval.String())

	exportDirEntry := widget.NewEntry()
	exportDirEntry.SetText(cfg.Plot.ExportDir)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Refresh Interval", Widget: refreshEntry},
			{Text: "Export Directory", Widget: exportDirEntry},
		},
		OnSubmit: func() {
			saveConfig(state, func(c *config.Config) {
				if ri, err := time.ParseDuration(refreshEntry.Text); err == nil {
					c.Plot.RefreshInterval = ri
				}
				if exportDirEntry.Text != "" {
					c.Plot.ExportDir = exportDirEntry.Text
				}
			})
		},
	}

	return container.NewTabItem("Plot", form)
}

// createMonitorTab creates the connection Monitor configuration tab.
func createMonitorTab(state *appState) *container.TabItem {
	cfg := state.config()

	toleranceEntry := widget.NewEntry()
	toleranceEntry.SetText(strconv.Itoa(cfg.Monitor.MalformedTolerance))

	noDataEntry := widget.NewEntry()
	noDataEntry.SetText(cfg.Monitor.NoDataTimeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Malformed Records Tolerated", Widget: toleranceEntry},
			{Text: "No Data Timeout", Widget: noDataEntry},
		},
		OnSubmit: func() {
			saveConfig(state, func(c *config.Config) {
				if n, err := strconv.Atoi(toleranceEntry.Text); err == nil {
					c.Monitor.MalformedTolerance = n
				}
				if nd, err := time.ParseDuration(noDataEntry.Text); err == nil {
					c.Monitor.NoDataTimeout = nd
				}
			})
		},
	}

	return container.NewTabItem("Monitor", form)
}

// createMockTab creates the simulated device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	cfg := state.config()

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(cfg.Mock.SampleRate.String())

	periodEntry := widget.NewEntry()
	periodEntry.SetText(cfg.Mock.Period.String())

	amplitudeAEntry := widget.NewEntry()
	amplitudeAEntry.SetText(fmt.Sprintf("%.2f", cfg.Mock.AmplitudeA))

	amplitudeBEntry := widget.NewEntry()
	amplitudeBEntry.SetText(fmt.Sprintf("%.2f", cfg.Mock.AmplitudeB))

	offsetEntry := widget.NewEntry()
	offsetEntry.SetText(fmt.Sprintf("%.2f", cfg.Mock.Offset))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.3f", cfg.Mock.NoiseLevel))

	malformedEntry := widget.NewEntry()
	malformedEntry.SetText(strconv.Itoa(cfg.Mock.MalformedEvery))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sample Rate", Widget: sampleRateEntry},
			{Text: "Period", Widget: periodEntry},
			{Text: "Channel 1 Amplitude", Widget: amplitudeAEntry},
			{Text: "Channel 2 Amplitude", Widget: amplitudeBEntry},
			{Text: "Offset", Widget: offsetEntry},
			{Text: "Noise Level", Widget: noiseEntry},
			{Text: "Malformed Every (0=never)", Widget: malformedEntry},
		},
		OnSubmit: func() {
			saveConfig(state, func(c *config.Config) {
				if sr, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
					c.Mock.SampleRate = sr
				}
				if p, err := time.ParseDuration(periodEntry.Text); err == nil {
					c.Mock.Period = p
				}
				if a, err := strconv.ParseFloat(amplitudeAEntry.Text, 64); err == nil {
					c.Mock.AmplitudeA = a
				}
				if b, err := strconv.ParseFloat(amplitudeBEntry.Text, 64); err == nil {
					c.Mock.AmplitudeB = b
				}
				if o, err := strconv.ParseFloat(offsetEntry.Text, 64); err == nil {
					c.Mock.Offset = o
				}
				if nl, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
					c.Mock.NoiseLevel = nl
				}
				if me, err := strconv.Atoi(malformedEntry.Text); err == nil {
					c.Mock.MalformedEvery = me
				}
			})
		},
	}

	return container.NewTabItem("Mock", form)
}
