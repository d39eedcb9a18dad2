package course

import (
	"errors"
	"strings"

	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"

	"github.com/mitchellh/mapstructure"
)

// courseUpdate lists the Course fields a caller may change. Identifiers, the instructor and the
// enrollment, content and rating lists are managed by other operations.
type courseUpdate struct {
	CourseName        *string  `mapstructure:"courseName"`
	CourseDescription *string  `mapstructure:"courseDescription"`
	WhatYouWillLearn  *string  `mapstructure:"whatYouWillLearn"`
	Price             *float64 `mapstructure:"price"`
	Category          *string  `mapstructure:"category"`
	Thumbnail         *string  `mapstructure:"thumbnail"`
	Status            *string  `mapstructure:"status"`
}

// applyUpdates copies the editable keys of updates onto c. Unknown keys are ignored. Form
// values arrive as strings, so numbers are decoded weakly.
func applyUpdates(c *models.Course, updates map[string]interface{}) error {
	var u courseUpdate
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &u,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(updates); err != nil {
		return qerrors.NewBadRequest("invalid course update: %v", err)
	}

	if u.CourseName != nil {
		c.CourseName = *u.CourseName
	}
	if u.CourseDescription != nil {
		c.CourseDescription = *u.CourseDescription
	}
	if u.WhatYouWillLearn != nil {
		c.WhatYouWillLearn = *u.WhatYouWillLearn
	}
	if u.Price != nil {
		c.Price = *u.Price
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.Thumbnail != nil {
		c.Thumbnail = *u.Thumbnail
	}
	if u.Status != nil {
		status, ok := models.ParseCourseStatus(*u.Status)
		if !ok {
			return qerrors.InvalidStatusError
		}
		c.Status = status
	}

	if raw, ok := updates["tag"]; ok {
		tags, err := decodeListUpdate(raw)
		if err != nil {
			return qerrors.NewBadRequest("Tag must be a list of strings: %v", err)
		}
		c.Tag = tags
	}
	if raw, ok := updates["instructions"]; ok {
		instructions, err := decodeListUpdate(raw)
		if err != nil {
			return qerrors.NewBadRequest("Instructions must be a list of strings: %v", err)
		}
		c.Instructions = instructions
	}
	return nil
}

// decodeListUpdate is NormalizeStringList for edits, where an encoded list must be present: a
// blank string is an error rather than an empty list. Send "[]" to clear a list.
func decodeListUpdate(raw interface{}) ([]string, error) {
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return nil, errors.New("empty value")
	}
	return NormalizeStringList(raw)
}
