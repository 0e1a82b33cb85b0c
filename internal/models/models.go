package models

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&Company{},
		&User{},
		&Session{},
		&Task{},
		&TaskPhoto{},
		&Assignment{},
		&AssignmentPhoto{},
		&Notification{},
	}
}
