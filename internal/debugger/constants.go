package debugger

// Panel sizing, grounded on the teacher's debugger/constants.go but cut down
// to the panels this driver actually has: no source/breakpoints/stack views,
// since there is no assembler-produced source map or breakpoint model here.
const (
	// RegisterPanelRows is the fixed height of the register panel: 15
	// registers plus borders.
	RegisterPanelRows = 17

	// HistoryPanelRows is the fixed height of the scrollback panel.
	HistoryPanelRows = 10
)
