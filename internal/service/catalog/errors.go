package catalog

import "errors"

var (
	ErrEmptySkillName = errors.New("skill name must not be empty")
	ErrSkillNotFound  = errors.New("skill not found")
)
