package input

// ButtonState tracks a mouse button across frames, distinguishing the edge
// frames from steady state.
type ButtonState int

const (
	Released ButtonState = iota
	JustPressed
	Held
	JustReleased
)

// Down reports whether the button is currently pressed.
func (s ButtonState) Down() bool {
	return s == JustPressed || s == Held
}

// Mouse tracks pointer position, per-button edge state, relative motion,
// and accumulated wheel delta for one frame.
type Mouse struct {
	buttons [8]ButtonState

	x, y         int
	lastX, lastY int
	relX, relY   int
	hasPos       bool

	wheel float32
}

// newFrame ages edge states into their steady equivalents and resets the
// per-frame accumulators. Called once at the top of every Update.
func (m *Mouse) newFrame() {
	for i, s := range m.buttons {
		switch s {
		case JustPressed:
			m.buttons[i] = Held
		case JustReleased:
			m.buttons[i] = Released
		}
	}
	m.lastX, m.lastY = m.x, m.y
	m.relX, m.relY = 0, 0
	m.wheel = 0
}

func (m *Mouse) updateButton(button uint8, pressed bool) {
	if int(button) >= len(m.buttons) {
		return
	}
	if pressed {
		m.buttons[button] = JustPressed
	} else {
		m.buttons[button] = JustReleased
	}
}

func (m *Mouse) updatePosition(x, y, relX, relY int) {
	if !m.hasPos {
		m.lastX, m.lastY = x, y
		m.hasPos = true
	}
	m.x, m.y = x, y
	m.relX += relX
	m.relY += relY
}

// Button returns the state of an SDL button index (sdl.BUTTON_LEFT etc).
func (m *Mouse) Button(button uint8) ButtonState {
	if int(button) >= len(m.buttons) {
		return Released
	}
	return m.buttons[button]
}

// Position returns the current pointer position in window coordinates.
func (m *Mouse) Position() (int, int) {
	return m.x, m.y
}

// LastPosition returns the pointer position at the previous frame.
func (m *Mouse) LastPosition() (int, int) {
	return m.lastX, m.lastY
}

// RelativeMotion returns the motion accumulated this frame, valid in
// relative mouse mode where absolute position is meaningless.
func (m *Mouse) RelativeMotion() (int, int) {
	return m.relX, m.relY
}

// WheelDelta returns the scroll amount accumulated this frame.
func (m *Mouse) WheelDelta() float32 {
	return m.wheel
}
