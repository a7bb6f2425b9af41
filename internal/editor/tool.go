package editor

// Tool is the active raster-editing mode.
type Tool int

const (
	// ToolPencil stamps outline pixels along the pointer path.
	ToolPencil Tool = iota
	// ToolEraser clears a disk around every pixel on the pointer path.
	ToolEraser
	// ToolRoomFill flood-fills a region with a room or wall label.
	ToolRoomFill
)

func (t Tool) String() string {
	switch t {
	case ToolPencil:
		return "pencil"
	case ToolEraser:
		return "eraser"
	case ToolRoomFill:
		return "room-fill"
	default:
		return "unknown"
	}
}
