package parameter

// Layout & Margins
const (
	// BottomMargin reserves one line for the status bar
	BottomMargin = 1
)

// Glyphs
const (
	// GlyphBodySmall is drawn for bodies that cover at most one cell
	GlyphBodySmall = '●'

	// GlyphBodyFill fills cells inside larger bodies
	GlyphBodyFill = '░'

	// GlyphBoundary marks cells crossed by a boundary segment
	GlyphBoundary = '█'

	// GlyphEndpoint marks draggable boundary endpoints
	GlyphEndpoint = '◆'

	// GlyphBounds draws the world box
	GlyphBoundsH = '─'
	GlyphBoundsV = '│'
)

// Status Bar
const (
	StatusTextRunning = " RUN  "
	StatusTextPaused  = " PAUSE"
	StatusTextDragged = " DRAG "

	// AudioStr is shown while sound output is live
	AudioStr = "♫ "
)

// Window host
const (
	// WindowGravityStep is the gravity change per key press
	WindowGravityStep = 1.0

	// WindowSlowMotionScale is the time scale while slow motion is toggled on
	WindowSlowMotionScale = 0.25

	// WindowZoomStep is the scale multiplier per wheel notch
	WindowZoomStep = 1.1

	// WindowEndpointRadius is the drawn endpoint handle radius in pixels
	WindowEndpointRadius = 4.0

	// WindowBoundaryWidth is the stroke width of boundaries in pixels
	WindowBoundaryWidth = 2.0
)
