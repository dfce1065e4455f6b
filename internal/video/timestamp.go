// Package video converts per-parameter video annotations into the sparse
// timeline format of the video editor.
package video

import "strconv"

// zeroKey is the timeline key of the zero position.
const zeroKey = "0"

// ConvertTimestamp turns a microsecond timestamp into the editor's seconds
// key. A missing or zero timestamp becomes the literal "0"; any other value
// is rendered in its shortest decimal form, e.g. 17271058 -> "17.271058".
func ConvertTimestamp(us *float64) string {
	if us == nil || *us == 0 {
		return zeroKey
	}
	return safeTime(strconv.FormatFloat(*us/1e6, 'f', -1, 64))
}

// safeTime collapses every spelling of zero to zeroKey.
func safeTime(t string) string {
	switch t {
	case "0", "-0", "0.0", "-0.0":
		return zeroKey
	}
	return t
}

// convertDuration returns the duration in seconds, or nil when the
// duration is absent or zero.
func convertDuration(us *float64) interface{} {
	if us == nil || *us == 0 {
		return nil
	}
	return *us / 1e6
}
