package presentation

import (
	"log/slog"
	"strings"

	"cabal-assist/core/command"
	"cabal-assist/core/state"
	"cabal-assist/domain/stat"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// maxLogLines bounds the status log of one tab.
const maxLogLines = 500

// FlowTab is the tab of one automation flow: its parameters, start/stop
// buttons and status log.
type FlowTab struct {
	kind    state.FlowKind
	bridge  *UIEventBridge
	parent  fyne.Window
	logger  *slog.Logger
	catalog *stat.Catalog

	container fyne.CanvasObject
	startBtn  *widget.Button
	stopBtn   *widget.Button
	stateLbl  *widget.Label
	logView   *widget.Entry
	lines     []string

	// Stellar parameters
	keywordEntry *widget.SelectEntry
	minEntry     *widget.Entry
	effectEntry  *widget.Entry

	// Arrival parameters
	offensiveSelect *widget.Select
	offensiveValue  *widget.Select
	defensiveSelect *widget.Select
	defensiveValue  *widget.Select
}

// FlowTabConfig holds configuration for FlowTab.
type FlowTabConfig struct {
	Kind    state.FlowKind
	Bridge  *UIEventBridge
	Parent  fyne.Window
	Catalog *stat.Catalog
	Logger  *slog.Logger
}

// NewFlowTab creates a new flow tab.
func NewFlowTab(cfg *FlowTabConfig) *FlowTab {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	t := &FlowTab{
		kind:    cfg.Kind,
		bridge:  cfg.Bridge,
		parent:  cfg.Parent,
		logger:  cfg.Logger,
		catalog: cfg.Catalog,
	}

	t.startBtn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), t.handleStart)
	t.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), t.handleStop)
	t.stopBtn.Disable()
	t.stateLbl = widget.NewLabel(state.StateIdle.String())

	t.logView = widget.NewMultiLineEntry()
	t.logView.Wrapping = fyne.TextWrapWord

	controls := container.NewHBox(t.startBtn, t.stopBtn, widget.NewLabel("State:"), t.stateLbl)
	top := container.NewVBox(
		widget.NewCard(cfg.Kind.Title(), "", t.createParams()),
		controls,
	)

	t.container = container.NewBorder(top, nil, nil, nil, t.logView)
	return t
}

// Container returns the tab's content.
func (t *FlowTab) Container() fyne.CanvasObject {
	return t.container
}

// Kind returns the flow shown by the tab.
func (t *FlowTab) Kind() state.FlowKind {
	return t.kind
}

func (t *FlowTab) createParams() fyne.CanvasObject {
	switch t.kind {
	case state.FlowStellar:
		var options []string
		if t.catalog != nil && t.catalog.Stellar != nil {
			options = t.catalog.Stellar.Options
		}
		t.keywordEntry = widget.NewSelectEntry(options)
		t.keywordEntry.SetPlaceHolder("Option to look for")
		t.minEntry = widget.NewEntry()
		t.minEntry.SetPlaceHolder("Optional")
		t.effectEntry = widget.NewEntry()
		t.effectEntry.SetPlaceHolder("Default")
		return widget.NewForm(
			widget.NewFormItem("Option", t.keywordEntry),
			widget.NewFormItem("Min value", t.minEntry),
			widget.NewFormItem("Effect delay (ms)", t.effectEntry),
		)

	case state.FlowArrival:
		var vocab *stat.Vocabulary
		if t.catalog != nil {
			vocab = t.catalog.Arrival
		}
		t.offensiveSelect, t.offensiveValue = newStatPicker(vocab, stat.CategoryOffensive)
		t.defensiveSelect, t.defensiveValue = newStatPicker(vocab, stat.CategoryDefensive)
		return widget.NewForm(
			widget.NewFormItem("Offensive", container.NewGridWithColumns(2, t.offensiveSelect, t.offensiveValue)),
			widget.NewFormItem("Defensive", container.NewGridWithColumns(2, t.defensiveSelect, t.defensiveValue)),
		)

	default:
		return widget.NewLabel("Opens every flagged collection tab, dungeon and item, then registers it.")
	}
}

// newStatPicker builds a stat select whose value list follows the chosen stat.
func newStatPicker(vocab *stat.Vocabulary, c stat.Category) (*widget.Select, *widget.Select) {
	var opts []stat.Option
	if vocab != nil {
		opts = vocab.Options(c)
	}
	values := widget.NewSelect(nil, nil)
	values.PlaceHolder = "Min value"

	names := widget.NewSelect(optionNames(opts), func(display string) {
		values.ClearSelected()
		values.SetOptions(valueChoices(vocab, display))
	})
	names.PlaceHolder = "Any"
	return names, values
}

func (t *FlowTab) handleStart() {
	if t.bridge == nil {
		return
	}

	var err error
	switch t.kind {
	case state.FlowStellar:
		effect, perr := parseDelayMs(t.effectEntry.Text)
		if perr != nil {
			dialog.ShowError(perr, t.parent)
			return
		}
		err = t.bridge.StartStellar(strings.TrimSpace(t.keywordEntry.Text), strings.TrimSpace(t.minEntry.Text), effect)
	case state.FlowArrival:
		err = t.bridge.StartArrival(
			command.StatTarget{Display: t.offensiveSelect.Selected, MinValue: t.offensiveValue.Selected},
			command.StatTarget{Display: t.defensiveSelect.Selected, MinValue: t.defensiveValue.Selected},
		)
	default:
		err = t.bridge.StartBadge()
	}

	if err != nil {
		t.logger.Debug("Flow not started", "flow", string(t.kind), "error", err)
	}
}

func (t *FlowTab) handleStop() {
	if t.bridge == nil {
		return
	}
	if err := t.bridge.StopFlow(t.kind); err != nil {
		t.logger.Error("Failed to stop flow", "flow", string(t.kind), "error", err)
	}
}

// SetRunning toggles the start and stop buttons. Must run on the UI thread.
func (t *FlowTab) SetRunning(running bool) {
	if running {
		t.startBtn.Disable()
		t.stopBtn.Enable()
		return
	}
	t.startBtn.Enable()
	t.stopBtn.Disable()
}

// SetState shows the current run state. Must run on the UI thread.
func (t *FlowTab) SetState(s state.RunState) {
	t.stateLbl.SetText(s.String())
}

// AppendLog adds a line to the status log. Must run on the UI thread.
func (t *FlowTab) AppendLog(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > maxLogLines {
		t.lines = t.lines[len(t.lines)-maxLogLines:]
	}
	t.logView.SetText(strings.Join(t.lines, "\n"))
	t.logView.CursorRow = len(t.lines)
}
