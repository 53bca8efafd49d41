package world

// NotFoundError reports a missing world or history entry.
type NotFoundError struct {
	What string
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return e.What + " not found"
	}
	return e.What + ` "` + e.Name + `" not found`
}

// ConflictError reports a create or rename that would collide with an
// existing name.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return `name "` + e.Name + `" already exists`
}
