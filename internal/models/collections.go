package models

// Collection names shared by every store backend.
const (
	UsersCollection          = "users"
	ProfilesCollection       = "profiles"
	CategoriesCollection     = "categories"
	CoursesCollection        = "courses"
	SectionsCollection       = "sections"
	SubSectionsCollection    = "subsections"
	RatingsCollection        = "ratingandreviews"
	CourseProgressCollection = "courseprogresses"
)

// Array fields that hold references to other records.
const (
	UserCoursesField            = "courses"
	CategoryCoursesField        = "courses"
	CourseStudentsEnrolledField = "studentsEnrolled"
	SectionSubSectionField      = "subSection"
)
