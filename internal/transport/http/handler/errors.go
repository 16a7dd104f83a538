package handler

const (
	errInternalServer         = "Internal server error"
	errDepartmentNotFound     = "Department not found"
	errDepartmentNameConflict = "Department with this name already exists"
	errProjectNotFound        = "Project not found"
	errTaskNotFound           = "Task not found"
	errScheduleNotFound       = "Department schedule not found"
	errInvalidStatus          = "Invalid task status"
	errInvalidCursor          = "Invalid pagination cursor"
)
