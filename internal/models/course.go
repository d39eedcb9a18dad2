package models

import (
	"strings"
	"time"
)

type CourseStatus string

const (
	StatusDraft     CourseStatus = "Draft"
	StatusPublished CourseStatus = "Published"
)

// ParseCourseStatus matches s against the known statuses, ignoring case and surrounding space.
func ParseCourseStatus(s string) (CourseStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "draft":
		return StatusDraft, true
	case "published":
		return StatusPublished, true
	}
	return "", false
}

// Course is a purchasable learning unit owned by one instructor. Category, Instructor and the
// list fields hold record identifiers.
type Course struct {
	ID                string       `json:"_id" firestore:"-" bson:"_id" mapstructure:"_id"`
	CourseName        string       `json:"courseName" firestore:"courseName" bson:"courseName" mapstructure:"courseName"`
	CourseDescription string       `json:"courseDescription" firestore:"courseDescription" bson:"courseDescription" mapstructure:"courseDescription"`
	WhatYouWillLearn  string       `json:"whatYouWillLearn" firestore:"whatYouWillLearn" bson:"whatYouWillLearn" mapstructure:"whatYouWillLearn"`
	Price             float64      `json:"price" firestore:"price" bson:"price" mapstructure:"price"`
	Tag               []string     `json:"tag" firestore:"tag" bson:"tag" mapstructure:"tag"`
	Category          string       `json:"category" firestore:"category" bson:"category" mapstructure:"category"`
	Instructor        string       `json:"instructor" firestore:"instructor" bson:"instructor" mapstructure:"instructor"`
	Thumbnail         string       `json:"thumbnail" firestore:"thumbnail" bson:"thumbnail" mapstructure:"thumbnail"`
	Status            CourseStatus `json:"status" firestore:"status" bson:"status" mapstructure:"status"`
	Instructions      []string     `json:"instructions" firestore:"instructions" bson:"instructions" mapstructure:"instructions"`
	CourseContent     []string     `json:"courseContent" firestore:"courseContent" bson:"courseContent" mapstructure:"courseContent"`
	StudentsEnrolled  []string     `json:"studentsEnrolled" firestore:"studentsEnrolled" bson:"studentsEnrolled" mapstructure:"studentsEnrolled"`
	RatingAndReviews  []string     `json:"ratingAndReviews" firestore:"ratingAndReviews" bson:"ratingAndReviews" mapstructure:"ratingAndReviews"`
	CreatedAt         time.Time    `json:"createdAt" firestore:"createdAt" bson:"createdAt" mapstructure:"createdAt"`
}

// CourseDetails is a Course with every relation expanded.
type CourseDetails struct {
	*Course
	Category         *Category          `json:"category"`
	Instructor       *UserDetails       `json:"instructor"`
	CourseContent    []*SectionDetails  `json:"courseContent"`
	RatingAndReviews []*RatingAndReview `json:"ratingAndReviews"`
}

// CourseSummary is the projection returned when listing published courses.
type CourseSummary struct {
	ID               string   `json:"_id"`
	CourseName       string   `json:"courseName"`
	Price            float64  `json:"price"`
	Thumbnail        string   `json:"thumbnail"`
	Instructor       *User    `json:"instructor"`
	RatingAndReviews []string `json:"ratingAndReviews"`
	StudentsEnrolled []string `json:"studentsEnrolled"`
}

type Category struct {
	ID          string   `json:"_id" firestore:"-" bson:"_id" mapstructure:"_id"`
	Name        string   `json:"name" firestore:"name" bson:"name" mapstructure:"name"`
	Description string   `json:"description" firestore:"description" bson:"description" mapstructure:"description"`
	Courses     []string `json:"courses" firestore:"courses" bson:"courses" mapstructure:"courses"`
}

type Section struct {
	ID          string   `json:"_id" firestore:"-" bson:"_id" mapstructure:"_id"`
	SectionName string   `json:"sectionName" firestore:"sectionName" bson:"sectionName" mapstructure:"sectionName"`
	SubSection  []string `json:"subSection" firestore:"subSection" bson:"subSection" mapstructure:"subSection"`
}

// SectionDetails is a Section with its SubSections expanded, in order.
type SectionDetails struct {
	*Section
	SubSection []*SubSection `json:"subSection"`
}

// SubSection is a single video. TimeDuration is a string-encoded number of seconds.
type SubSection struct {
	ID           string `json:"_id" firestore:"-" bson:"_id" mapstructure:"_id"`
	Title        string `json:"title" firestore:"title" bson:"title" mapstructure:"title"`
	TimeDuration string `json:"timeDuration" firestore:"timeDuration" bson:"timeDuration" mapstructure:"timeDuration"`
	Description  string `json:"description" firestore:"description" bson:"description" mapstructure:"description"`
	VideoURL     string `json:"videoUrl" firestore:"videoUrl" bson:"videoUrl" mapstructure:"videoUrl"`
}

type RatingAndReview struct {
	ID     string  `json:"_id" firestore:"-" bson:"_id" mapstructure:"_id"`
	User   string  `json:"user" firestore:"user" bson:"user" mapstructure:"user"`
	Rating float64 `json:"rating" firestore:"rating" bson:"rating" mapstructure:"rating"`
	Review string  `json:"review" firestore:"review" bson:"review" mapstructure:"review"`
	Course string  `json:"course" firestore:"course" bson:"course" mapstructure:"course"`
}

// CourseProgress records which videos of a course a user has completed.
type CourseProgress struct {
	ID              string   `json:"_id" firestore:"-" bson:"_id" mapstructure:"_id"`
	CourseID        string   `json:"courseID" firestore:"courseID" bson:"courseID" mapstructure:"courseID"`
	UserID          string   `json:"userId" firestore:"userId" bson:"userId" mapstructure:"userId"`
	CompletedVideos []string `json:"completedVideos" firestore:"completedVideos" bson:"completedVideos" mapstructure:"completedVideos"`
}
