package presentation

import (
	"log/slog"
	"strconv"
	"strings"

	"cabal-assist/domain/calibration"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// CalibrationPanel lets the user record buttons and areas by clicking in the
// game, and edit the action delay.
type CalibrationPanel struct {
	bridge *UIEventBridge
	parent fyne.Window
	logger *slog.Logger

	container fyne.CanvasObject

	buttonLabels map[calibration.Role]*widget.Label
	areaLabels   map[calibration.Area]*widget.Label
	profileEntry *widget.Entry
	delayEntry   *widget.Entry
	promptLabel  *widget.Label
}

// CalibrationPanelConfig holds configuration for CalibrationPanel.
type CalibrationPanelConfig struct {
	Bridge *UIEventBridge
	Parent fyne.Window
	Logger *slog.Logger
}

// NewCalibrationPanel creates a new calibration panel.
func NewCalibrationPanel(cfg *CalibrationPanelConfig) *CalibrationPanel {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := &CalibrationPanel{
		bridge:       cfg.Bridge,
		parent:       cfg.Parent,
		logger:       cfg.Logger,
		buttonLabels: make(map[calibration.Role]*widget.Label),
		areaLabels:   make(map[calibration.Area]*widget.Label),
	}

	buttons := container.NewGridWithColumns(3)
	for _, role := range calibration.Roles() {
		role := role
		lbl := widget.NewLabel(notSet)
		p.buttonLabels[role] = lbl
		buttons.Add(widget.NewLabel(role.Label()))
		buttons.Add(lbl)
		buttons.Add(widget.NewButton("Set", func() { p.calibrateButton(role) }))
	}

	areas := container.NewGridWithColumns(3)
	for _, area := range calibration.Areas() {
		area := area
		lbl := widget.NewLabel(notSet)
		p.areaLabels[area] = lbl
		areas.Add(widget.NewLabel(area.Label()))
		areas.Add(lbl)
		areas.Add(widget.NewButton("Set", func() { p.calibrateArea(area) }))
	}

	p.profileEntry = widget.NewEntry()
	p.profileEntry.SetPlaceHolder(calibration.DefaultProfileName)
	p.delayEntry = widget.NewEntry()
	p.delayEntry.SetPlaceHolder(strconv.Itoa(calibration.DefaultDelayMs))
	p.promptLabel = widget.NewLabel("")
	p.promptLabel.Wrapping = fyne.TextWrapWord

	settings := widget.NewForm(
		widget.NewFormItem("Profile", container.NewBorder(nil, nil, nil,
			widget.NewButton("Load", p.loadProfile), p.profileEntry)),
		widget.NewFormItem("Delay (ms)", container.NewBorder(nil, nil, nil,
			widget.NewButton("Save", p.saveDelay), p.delayEntry)),
	)

	toolbar := container.NewHBox(
		widget.NewButtonWithIcon("Find game", theme.SearchIcon(), p.connect),
		widget.NewButtonWithIcon("Cancel capture", theme.CancelIcon(), p.cancel),
	)

	p.container = container.NewVScroll(container.NewVBox(
		widget.NewCard("Settings", "", settings),
		toolbar,
		p.promptLabel,
		widget.NewCard("Buttons", "Window-relative", buttons),
		widget.NewCard("Areas", "Screen coordinates", areas),
	))
	return p
}

// Container returns the panel content.
func (p *CalibrationPanel) Container() fyne.CanvasObject {
	return p.container
}

func (p *CalibrationPanel) calibrateButton(role calibration.Role) {
	if p.bridge == nil {
		return
	}
	if err := p.bridge.CalibrateButton(role); err != nil {
		dialog.ShowError(err, p.parent)
	}
}

func (p *CalibrationPanel) calibrateArea(area calibration.Area) {
	if p.bridge == nil {
		return
	}
	if err := p.bridge.CalibrateArea(area); err != nil {
		dialog.ShowError(err, p.parent)
	}
}

func (p *CalibrationPanel) cancel() {
	if p.bridge == nil {
		return
	}
	if err := p.bridge.CancelCalibration(); err != nil {
		p.logger.Warn("Failed to cancel capture", "error", err)
	}
	p.promptLabel.SetText("")
}

func (p *CalibrationPanel) connect() {
	if p.bridge == nil {
		return
	}
	if err := p.bridge.ConnectWindow(); err != nil {
		dialog.ShowError(err, p.parent)
	}
}

func (p *CalibrationPanel) loadProfile() {
	if p.bridge == nil {
		return
	}
	name := strings.TrimSpace(p.profileEntry.Text)
	if name == "" {
		name = calibration.DefaultProfileName
	}
	if err := p.bridge.LoadProfile(name); err != nil {
		dialog.ShowError(err, p.parent)
	}
}

func (p *CalibrationPanel) saveDelay() {
	if p.bridge == nil {
		return
	}
	ms, err := parseDelayMs(p.delayEntry.Text)
	if err != nil {
		dialog.ShowError(err, p.parent)
		return
	}
	if err := p.bridge.SetDelay(ms); err != nil {
		dialog.ShowError(err, p.parent)
	}
}

// ShowPrompt displays the capture instruction. Must run on the UI thread.
func (p *CalibrationPanel) ShowPrompt(text string) {
	p.promptLabel.SetText(text)
}

// SetProfile refreshes every value from profile. Must run on the UI thread.
func (p *CalibrationPanel) SetProfile(profile *calibration.Profile) {
	p.promptLabel.SetText("")
	if profile == nil {
		return
	}
	p.profileEntry.SetText(profile.Name)
	p.delayEntry.SetText(strconv.Itoa(profile.DelayMs))
	for role, lbl := range p.buttonLabels {
		lbl.SetText(buttonText(profile, role))
	}
	for area, lbl := range p.areaLabels {
		lbl.SetText(areaText(profile, area))
	}
}
