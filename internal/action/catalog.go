package action

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"motionberry-cli/pkg/models"
)

const (
	SnapshotAction         = "snapshot"
	RecordAction           = "record"
	EnableDetectionAction  = "enable-detection"
	DisableDetectionAction = "disable-detection"
)

// Snapshot takes a still image; the server answers with its filename.
func Snapshot() Link {
	return Link{Name: SnapshotAction, URL: "/api/snapshot", Description: "Take a snapshot and download it"}
}

// Record records for the given number of seconds and answers with the clip
// filename once the recording is finished.
func Record(seconds int) Link {
	body, _ := json.Marshal(models.RecordPayload{Duration: seconds})
	return Link{
		Name:        RecordAction,
		URL:         "/api/record",
		Body:        string(body),
		Description: "Record a clip and download it",
	}
}

func EnableDetection() Link {
	return Link{Name: EnableDetectionAction, URL: "/api/enable_detection", Description: "Start motion detection"}
}

func DisableDetection() Link {
	return Link{Name: DisableDetectionAction, URL: "/api/disable_detection", Description: "Stop motion detection"}
}

// Catalog maps action names to links.
type Catalog map[string]Link

// NewCatalog returns the built-in actions overlaid with extra. Entries in
// extra replace built-ins of the same name.
func NewCatalog(recordSeconds int, extra map[string]Link) Catalog {
	c := Catalog{}
	for _, l := range []Link{Snapshot(), Record(recordSeconds), EnableDetection(), DisableDetection()} {
		c[l.Name] = l
	}
	for name, l := range extra {
		name = strings.TrimSpace(name)
		if name == "" || l.URL == "" {
			continue
		}
		l.Name = name
		c[name] = l
	}
	return c
}

func (c Catalog) Lookup(name string) (Link, error) {
	l, ok := c[name]
	if !ok {
		return Link{}, fmt.Errorf("unknown action %q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	return l, nil
}

// Names returns the action names sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
