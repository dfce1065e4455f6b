package models

// VideoDocument is the per-parameter video annotation format.
type VideoDocument struct {
	Metadata  VideoMetadata   `json:"metadata"`
	Instances []VideoInstance `json:"instances"`
	Tags      []string        `json:"tags"`
}

// VideoMetadata describes the annotated video. Duration is in microseconds.
type VideoMetadata struct {
	Name     string   `json:"name"`
	Width    *int     `json:"width,omitempty"`
	Height   *int     `json:"height,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// VideoInstance is one object track: a shared meta block and the list of
// intervals during which the object is visible.
type VideoInstance struct {
	Meta       VideoMeta        `json:"meta"`
	Parameters []VideoParameter `json:"parameters"`
}

// VideoMeta holds the track-level fields of a video instance.
type VideoMeta struct {
	Type        string                 `json:"type"`
	ClassName   *string                `json:"className,omitempty"`
	PointLabels map[string]interface{} `json:"pointLabels,omitempty"`
	Start       *float64               `json:"start,omitempty"`
	End         *float64               `json:"end,omitempty"`
}

// VideoParameter is a visibility interval with its keyframes.
type VideoParameter struct {
	Start      *float64         `json:"start"`
	End        *float64         `json:"end"`
	Timestamps []VideoTimestamp `json:"timestamps"`
}

// VideoTimestamp is a keyframe: the geometry and the attributes active at
// that instant.
type VideoTimestamp struct {
	Timestamp  *float64           `json:"timestamp"`
	Points     interface{}        `json:"points,omitempty"`
	Attributes []AttributeRefName `json:"attributes"`
}

// AttributeRefName is a symbolic attribute reference.
type AttributeRefName struct {
	Name      string `json:"name"`
	GroupName string `json:"groupName"`
}

// EditorDocument is the video editor payload produced from a VideoDocument.
type EditorDocument struct {
	Instances []*EditorInstance `json:"instances"`
	Tags      []string          `json:"tags"`
	Name      string            `json:"name"`
	Metadata  EditorMetadata    `json:"metadata"`
}

// EditorMetadata is the metadata block of an EditorDocument. Duration is a
// number of seconds, omitted when the source duration is absent or zero.
type EditorMetadata struct {
	Name     string      `json:"name"`
	Width    *int        `json:"width"`
	Height   *int        `json:"height"`
	Duration interface{} `json:"duration,omitempty"`
}

// EditorInstance is a video instance expressed as a sparse timeline.
type EditorInstance struct {
	Attributes  []AttributeRef            `json:"attributes"`
	Timeline    map[string]*TimelineEntry `json:"timeline"`
	Type        string                    `json:"type"`
	Locked      bool                      `json:"locked"`
	ClassID     int                       `json:"classId"`
	PointLabels map[string]interface{}    `json:"pointLabels,omitempty"`
}

// TimelineEntry is the change set applied at one timeline position.
type TimelineEntry struct {
	Active     *bool           `json:"active,omitempty"`
	Points     interface{}     `json:"points,omitempty"`
	Attributes *AttributeDelta `json:"attributes,omitempty"`
}

// AttributeDelta lists attributes switched on ("+") and off ("-").
type AttributeDelta struct {
	Added   []AttributeRef `json:"+"`
	Removed []AttributeRef `json:"-"`
}

// AttributeRef is a resolved attribute reference.
type AttributeRef struct {
	ID      int `json:"id"`
	GroupID int `json:"groupId"`
}
