package parameter

// Viewport configuration
const (
	// TerminalCellAspect is cell width over cell height; terminal cells are about twice as tall as wide
	TerminalCellAspect = 0.5

	// ViewportFitMargin is the fraction of the screen left free around fitted bounds
	ViewportFitMargin = 0.05

	// TerminalGrabTolerance and TerminalHoverTolerance are pick radii in cells
	TerminalGrabTolerance  = 1.5
	TerminalHoverTolerance = 1.0
)
