package service

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// Defaults for new tasks.
const (
	DefaultPriority = PriorityMedium
	DefaultStatus   = StatusTodo
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Statuses lists every status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}

// Color names a display color. The UI maps them to terminal colors.
type Color string

const (
	ColorGray   Color = "gray"
	ColorBlue   Color = "blue"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
)

var priorityLabels = map[Priority]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
	PriorityUrgent: "Urgent",
}

var priorityColors = map[Priority]Color{
	PriorityLow:    ColorGray,
	PriorityMedium: ColorBlue,
	PriorityHigh:   ColorOrange,
	PriorityUrgent: ColorRed,
}

var statusLabels = map[Status]string{
	StatusTodo:       "To do",
	StatusInProgress: "In progress",
	StatusDone:       "Done",
	StatusCancelled:  "Cancelled",
}

var statusColors = map[Status]Color{
	StatusTodo:       ColorGray,
	StatusInProgress: ColorBlue,
	StatusDone:       ColorGreen,
	StatusCancelled:  ColorRed,
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

// Label returns the display label. Unknown values render as-is.
func (p Priority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

// Color returns the display color. Unknown values are gray.
func (p Priority) Color() Color {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return ColorGray
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label. Unknown values render as-is.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Color returns the display color. Unknown values are gray.
func (s Status) Color() Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return ColorGray
}
