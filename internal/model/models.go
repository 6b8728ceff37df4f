package model

// All lists every table managed by migrations.
func All() []interface{} {
	return []interface{}{
		&Source{},
		&KeyValueEntry{},
	}
}
