package googletasks

import (
	"regexp"
	"strings"

	"taskdesk/internal/service"
)

// The last line of a task's notes carries the fields Google Tasks has no
// place for, e.g. "[taskdesk priority=high status=in_progress]".
var metaLine = regexp.MustCompile(`^\[taskdesk((?: [a-z_]+=[a-z_]+)*)\]$`)

type noteMeta struct {
	priority service.Priority
	status   service.Status
}

// splitNotes separates the description from the metadata line.
// Notes without a metadata line are all description.
func splitNotes(notes string) (*string, noteMeta) {
	var meta noteMeta
	body := strings.TrimRight(notes, "\n")

	lines := strings.Split(body, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if m := metaLine.FindStringSubmatch(last); m != nil {
		for _, kv := range strings.Fields(m[1]) {
			k, v, _ := strings.Cut(kv, "=")
			switch k {
			case "priority":
				meta.priority = service.Priority(v)
			case "status":
				meta.status = service.Status(v)
			}
		}
		body = strings.TrimRight(strings.Join(lines[:len(lines)-1], "\n"), "\n")
	}

	if body == "" {
		return nil, meta
	}
	return &body, meta
}

// joinNotes appends the metadata line to the description.
func joinNotes(desc *string, meta noteMeta) string {
	line := "[taskdesk priority=" + string(meta.priority) + " status=" + string(meta.status) + "]"
	if desc == nil || *desc == "" {
		return line
	}
	return *desc + "\n" + line
}
