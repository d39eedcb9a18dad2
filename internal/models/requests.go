package models

import "io"

// Upload is a file received from a caller, waiting to be sent to the media service.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CreateCourseRequest is the parameter struct for the CreateCourse function. Field order is the
// order in which missing fields are reported.
type CreateCourseRequest struct {
	CourseName        string      `json:"courseName" mapstructure:"courseName" validate:"required"`
	CourseDescription string      `json:"courseDescription" mapstructure:"courseDescription" validate:"required"`
	WhatYouWillLearn  string      `json:"whatYouWillLearn" mapstructure:"whatYouWillLearn" validate:"required"`
	Price             float64     `json:"price" mapstructure:"price" validate:"required"`
	Tag               interface{} `json:"tag" mapstructure:"tag" validate:"required,notblank"`
	Category          string      `json:"category" mapstructure:"category" validate:"required"`
	Status            string      `json:"status" mapstructure:"status" validate:"required"`
	Instructions      interface{} `json:"instructions" mapstructure:"instructions" validate:"required,notblank"`

	InstructorID string  `json:"-" mapstructure:"-"`
	Thumbnail    *Upload `json:"-" mapstructure:"-"`
}

// EditCourseRequest is the parameter struct for the EditCourse function. Updates holds the raw
// body fields; only editable Course fields are applied.
type EditCourseRequest struct {
	CourseID  string
	CallerID  string
	Updates   map[string]interface{}
	Thumbnail *Upload
}

// DeleteCourseRequest is the parameter struct for the DeleteCourse function.
type DeleteCourseRequest struct {
	CourseID string `json:"courseId"`
	CallerID string `json:"-"`
}

// FullCourseDetails is the result of the GetFullCourseDetails function.
type FullCourseDetails struct {
	CourseDetails   *CourseDetails `json:"courseDetails"`
	TotalDuration   string         `json:"totalDuration"`
	CompletedVideos []string       `json:"completedVideos"`
}
