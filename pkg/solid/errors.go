package solid

import "fmt"

// GeometryError reports a building whose parameters cannot be realised
// as valid geometry. The caller is expected to skip the building and
// record the reason rather than abort the run.
type GeometryError struct {
	BuildingID string
	Reason     string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("building %s: %s", e.BuildingID, e.Reason)
}

func geomErrf(id, format string, args ...any) *GeometryError {
	return &GeometryError{BuildingID: id, Reason: fmt.Sprintf(format, args...)}
}
